package service

import (
	"context"
	stderrors "errors"

	"campaigner/internal/database"
	"campaigner/internal/errors"
	"campaigner/internal/models"
	"campaigner/internal/security"
	"campaigner/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TemplateDatabase is the backing store surface the template service needs.
type TemplateDatabase interface {
	SaveTemplate(ctx context.Context, tmpl *models.Template) error
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	GetTemplates(ctx context.Context) ([]*models.Template, error)
	UpdateTemplate(ctx context.Context, tmpl *models.Template) error
	DeleteTemplate(ctx context.Context, id string) error
}

// TemplateService owns message templates. Template edits never touch
// messages already scheduled; those carry their own content snapshot.
type TemplateService struct {
	logger *logrus.Logger
	db     TemplateDatabase
}

func NewTemplateService(db TemplateDatabase, logger *logrus.Logger) *TemplateService {
	return &TemplateService{logger: logger, db: db}
}

func (s *TemplateService) GetTemplates(ctx context.Context) ([]*models.Template, error) {
	templates, err := s.db.GetTemplates(ctx)
	if err != nil {
		return nil, errors.NewStoreError("get templates", err)
	}
	return templates, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	tmpl, err := s.db.GetTemplate(ctx, id)
	if err != nil {
		return nil, errors.NewStoreError("get template", err)
	}
	if tmpl == nil {
		return nil, errors.NewNotFoundError("template", id)
	}
	return tmpl, nil
}

// validateTemplateInput checks the user-supplied template fields. The image
// path must be safe and point at a supported image type before it is ever
// snapshotted into a message.
func validateTemplateInput(tmpl *models.Template) error {
	if err := validation.ValidateTemplateName(tmpl.Name); err != nil {
		return err
	}
	if err := validation.ValidateTemplateContent(tmpl.Content); err != nil {
		return err
	}
	if tmpl.ImagePath != nil && *tmpl.ImagePath != "" {
		if err := security.ValidateImagePath(*tmpl.ImagePath); err != nil {
			return errors.NewValidationError("imagePath", err.Error())
		}
	}
	return nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, tmpl *models.Template) (*models.Template, error) {
	if err := validateTemplateInput(tmpl); err != nil {
		return nil, err
	}

	created := *tmpl
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if err := s.db.SaveTemplate(ctx, &created); err != nil {
		var dup *database.DuplicateKeyError
		if stderrors.As(err, &dup) {
			return nil, errors.New(errors.ErrCodeDuplicateName, "template name already exists").
				WithContext("name", created.Name)
		}
		return nil, errors.NewStoreError("create template", err)
	}
	return &created, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, tmpl *models.Template) (*models.Template, error) {
	existing, err := s.db.GetTemplate(ctx, tmpl.ID)
	if err != nil {
		return nil, errors.NewStoreError("get template", err)
	}
	if existing == nil {
		return nil, errors.NewNotFoundError("template", tmpl.ID)
	}
	if err := validateTemplateInput(tmpl); err != nil {
		return nil, err
	}

	updated := *tmpl
	if err := s.db.UpdateTemplate(ctx, &updated); err != nil {
		var dup *database.DuplicateKeyError
		if stderrors.As(err, &dup) {
			return nil, errors.New(errors.ErrCodeDuplicateName, "template name already exists").
				WithContext("name", updated.Name)
		}
		return nil, errors.NewStoreError("update template", err)
	}
	return &updated, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.db.DeleteTemplate(ctx, id); err != nil {
		return errors.NewStoreError("delete template", err)
	}
	return nil
}

// Preview renders template content against a contact without persisting
// anything.
func (s *TemplateService) Preview(content string, contact *models.Contact) string {
	tmpl := models.Template{Content: content}
	return tmpl.Render(contact)
}
