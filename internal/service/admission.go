package service

import (
	"fmt"
	"sync"

	"campaigner/internal/models"
)

// ImportSession holds one import batch as it moves through admission. Each
// record carries a base classification fixed by the two-pass run plus a
// Selected flag the user toggles; a deselected record reports itself as
// skipped but keeps its base class, so aggregate counters can always be
// recomputed from current set membership instead of incremental arithmetic.
type ImportSession struct {
	mu      sync.Mutex
	records []sessionRecord
}

type sessionRecord struct {
	raw        models.RawRecord
	normalized string
	base       models.Classification
	selected   bool
	skipReason *string
}

// NewImportSession classifies a raw batch against the set of already
// persisted normalized phone numbers.
//
// Pass 1 indexes first occurrences; every phone seen more than once flags all
// of its occurrences as duplicate-in-file. Pass 2 walks the batch in original
// order: no usable phone is missing, a phone already persisted is
// duplicate-existing, a flagged phone is duplicate-in-file (still selected,
// the user resolves), anything else is valid and its phone joins a working
// copy of the existing set so later records cannot slip past it.
func NewImportSession(batch []models.RawRecord, existingPhones []string) *ImportSession {
	existing := make(map[string]bool, len(existingPhones))
	for _, p := range existingPhones {
		existing[p] = true
	}

	records := make([]sessionRecord, len(batch))

	// Pass 1: find in-file duplicates by normalized phone.
	firstSeen := make(map[string]int, len(batch))
	inFileDup := make(map[int]bool)
	for i, raw := range batch {
		phone := models.NormalizePhone(raw.PhoneNumber)
		records[i] = sessionRecord{raw: raw, normalized: phone}
		if phone == "" {
			continue
		}
		if first, ok := firstSeen[phone]; ok {
			inFileDup[first] = true
			inFileDup[i] = true
		} else {
			firstSeen[phone] = i
		}
	}

	// Pass 2: classify in original order against a working copy of the
	// existing set.
	working := make(map[string]bool, len(existing))
	for p := range existing {
		working[p] = true
	}
	for i := range records {
		rec := &records[i]
		switch {
		case rec.normalized == "":
			rec.base = models.ClassificationMissing
			rec.selected = false
		case working[rec.normalized] && existing[rec.normalized]:
			rec.base = models.ClassificationDuplicateExisting
			rec.selected = false
		case inFileDup[i]:
			rec.base = models.ClassificationDuplicateInFile
			rec.selected = true
		default:
			rec.base = models.ClassificationValid
			rec.selected = true
			working[rec.normalized] = true
		}
	}

	return &ImportSession{records: records}
}

// Len returns the batch size.
func (s *ImportSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns the current view of every record in original order.
func (s *ImportSession) Records() []models.ImportRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ImportRecord, len(s.records))
	for i := range s.records {
		out[i] = s.view(i)
	}
	return out
}

// Record returns the current view of one record.
func (s *ImportSession) Record(index int) (models.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return models.ImportRecord{}, fmt.Errorf("record index %d out of range", index)
	}
	return s.view(index), nil
}

func (s *ImportSession) view(i int) models.ImportRecord {
	rec := s.records[i]
	class := rec.base
	if !rec.selected && selectable(rec.base) {
		class = models.ClassificationSkipped
	}
	return models.ImportRecord{
		Raw:             rec.raw,
		Index:           i,
		NormalizedPhone: rec.normalized,
		Classification:  class,
		Selected:        rec.selected,
		SkipReason:      rec.skipReason,
	}
}

// selectable reports whether a base classification may enter the commit set.
func selectable(c models.Classification) bool {
	return c == models.ClassificationValid || c == models.ClassificationDuplicateInFile
}

// Skip deselects one record. Idempotent; records that were never selectable
// are left untouched.
func (s *ImportSession) Skip(index int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return fmt.Errorf("record index %d out of range", index)
	}
	rec := &s.records[index]
	if !selectable(rec.base) {
		return nil
	}
	rec.selected = false
	if reason != "" {
		rec.skipReason = &reason
	}
	return nil
}

// Restore re-selects one previously skipped record. Idempotent.
func (s *ImportSession) Restore(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return fmt.Errorf("record index %d out of range", index)
	}
	rec := &s.records[index]
	if !selectable(rec.base) {
		return nil
	}
	rec.selected = true
	rec.skipReason = nil
	return nil
}

// SkipAllDuplicatesInFile deselects every in-file duplicate.
func (s *ImportSession) SkipAllDuplicatesInFile() {
	s.skipAll(func(rec *sessionRecord) bool {
		return rec.base == models.ClassificationDuplicateInFile
	}, "duplicate in file")
}

// SkipAllValid deselects every currently selected selectable record.
func (s *ImportSession) SkipAllValid() {
	s.skipAll(func(rec *sessionRecord) bool {
		return rec.selected
	}, "skipped by user")
}

// RestoreAllSkipped re-selects every skipped record.
func (s *ImportSession) RestoreAllSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		rec := &s.records[i]
		if selectable(rec.base) && !rec.selected {
			rec.selected = true
			rec.skipReason = nil
		}
	}
}

func (s *ImportSession) skipAll(match func(*sessionRecord) bool, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		rec := &s.records[i]
		if selectable(rec.base) && rec.selected && match(rec) {
			rec.selected = false
			r := reason
			rec.skipReason = &r
		}
	}
}

// Summary recomputes all aggregate counters from the current record set.
// Valid is the size of the commit set (selected valid and duplicate-in-file
// records); the classification counters always partition the batch.
func (s *ImportSession) Summary() models.ImportSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := models.ImportSummary{Total: len(s.records)}
	for i := range s.records {
		rec := &s.records[i]
		switch rec.base {
		case models.ClassificationDuplicateInFile:
			sum.DuplicateInFile++
		case models.ClassificationDuplicateExisting:
			sum.DuplicateExisting++
		case models.ClassificationMissing:
			sum.Missing++
		}
		if selectable(rec.base) {
			if rec.selected {
				sum.Valid++
			} else {
				sum.Skipped++
			}
		}
	}
	return sum
}

// CommitSet returns the records that will be imported: every selected record
// whose base classification is valid or duplicate-in-file, in original order.
func (s *ImportSession) CommitSet() []models.ImportRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ImportRecord
	for i := range s.records {
		rec := &s.records[i]
		if selectable(rec.base) && rec.selected {
			out = append(out, s.view(i))
		}
	}
	return out
}
