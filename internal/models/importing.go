package models

// Classification is the admission verdict for one imported record.
type Classification string

const (
	ClassificationValid             Classification = "valid"
	ClassificationDuplicateInFile   Classification = "duplicate-in-file"
	ClassificationDuplicateExisting Classification = "duplicate-existing"
	ClassificationMissing           Classification = "missing"
	ClassificationSkipped           Classification = "skipped"
)

// RawRecord is one row as produced by the file-parsing collaborator, before
// admission has looked at it.
type RawRecord struct {
	PhoneNumber string  `json:"phoneNumber"`
	Name        string  `json:"name"`
	Surname     string  `json:"surname"`
	Email       *string `json:"email,omitempty"`
	Birthday    *string `json:"birthday,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// ImportRecord is a RawRecord passing through the admission pipeline. It
// lives only for the duration of an import session.
type ImportRecord struct {
	Raw             RawRecord      `json:"raw"`
	Index           int            `json:"index"`
	NormalizedPhone string         `json:"normalizedPhone"`
	Classification  Classification `json:"classification"`
	Selected        bool           `json:"selected"`
	SkipReason      *string        `json:"skipReason,omitempty"`
}

// ImportSummary is the aggregate view of an import session. Counts are
// always recomputed from current set membership, never adjusted
// incrementally. Valid is the size of the commit set, Skipped the number of
// deselected committable records; the remaining counters report the fixed
// admission classes, so Valid+Skipped covers exactly the committable records
// and DuplicateExisting+Missing the rest of the batch.
type ImportSummary struct {
	Valid             int `json:"valid"`
	DuplicateInFile   int `json:"duplicateInFile"`
	DuplicateExisting int `json:"duplicateExisting"`
	Missing           int `json:"missing"`
	Skipped           int `json:"skipped"`
	Total             int `json:"total"`
}

// ImportResult is the outcome of committing an import session.
type ImportResult struct {
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Errors     int      `json:"errors"`
	Total      int      `json:"total"`
	Reasons    []string `json:"reasons,omitempty"`
}

// BulkResult is the outcome of a bulk delete, reported progressively and at
// completion.
type BulkResult struct {
	Deleted int `json:"deleted"`
	Errors  int `json:"errors"`
	Total   int `json:"total"`
}

// ScheduleResult is the outcome of a batch scheduling request.
type ScheduleResult struct {
	Scheduled int      `json:"scheduled"`
	Errors    int      `json:"errors"`
	Total     int      `json:"total"`
	Reasons   []string `json:"reasons,omitempty"`
}
