package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"campaigner/internal/constants"
	"campaigner/internal/errors"
	"campaigner/internal/middleware"
	"campaigner/internal/models"
	"campaigner/internal/service"
	"campaigner/internal/versioning"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router    *mux.Router
	logger    *logrus.Logger
	cfg       *models.Config
	contacts  *service.ContactService
	templates *service.TemplateService
	messages  *service.MessageService
	settings  *service.SettingsService
	events    *service.Reconciler
	server    *http.Server
}

func NewServer(cfg *models.Config, logger *logrus.Logger, contacts *service.ContactService, templates *service.TemplateService, messages *service.MessageService, settings *service.SettingsService, events *service.Reconciler) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		logger:    logger,
		cfg:       cfg,
		contacts:  contacts,
		templates: templates,
		messages:  messages,
		settings:  settings,
		events:    events,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Observability(s.logger))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/contacts", s.handleListContacts()).Methods(http.MethodGet)
	api.HandleFunc("/contacts", s.handleCreateContact()).Methods(http.MethodPost)
	api.HandleFunc("/contacts/import", s.handleImportContacts()).Methods(http.MethodPost)
	api.HandleFunc("/contacts/bulk-delete", s.handleBulkDeleteContacts()).Methods(http.MethodPost)
	api.HandleFunc("/contacts/by-phone", s.handleGetContactByPhone()).Methods(http.MethodGet)
	api.HandleFunc("/contacts/{id}", s.handleGetContact()).Methods(http.MethodGet)
	api.HandleFunc("/contacts/{id}", s.handleUpdateContact()).Methods(http.MethodPut)

	api.HandleFunc("/templates", s.handleListTemplates()).Methods(http.MethodGet)
	api.HandleFunc("/templates", s.handleCreateTemplate()).Methods(http.MethodPost)
	api.HandleFunc("/templates/{id}", s.handleUpdateTemplate()).Methods(http.MethodPut)
	api.HandleFunc("/templates/{id}", s.handleDeleteTemplate()).Methods(http.MethodDelete)

	api.HandleFunc("/messages", s.handleListMessages()).Methods(http.MethodGet)
	api.HandleFunc("/messages/schedule", s.handleScheduleMessages()).Methods(http.MethodPost)
	api.HandleFunc("/messages/bulk-delete", s.handleBulkDeleteMessages()).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}/cancel", s.handleCancelMessage()).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}/retry", s.handleRetryMessage()).Methods(http.MethodPost)

	api.HandleFunc("/settings/window", s.handleGetWindow()).Methods(http.MethodGet)
	api.HandleFunc("/settings/window", s.handleUpdateWindow()).Methods(http.MethodPut)

	// Webhook fallback for channels that push status updates over HTTP
	// instead of the event socket.
	s.router.HandleFunc("/webhook/status", s.handleStatusWebhook()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  constants.DefaultServerReadTimeoutSec * time.Second,
		WriteTimeout: constants.DefaultServerWriteTimeoutSec * time.Second,
		IdleTimeout:  constants.DefaultServerIdleTimeoutSec * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.cfg.Server.Port)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"build":  versioning.Get(),
		})
	}
}

func (s *Server) handleListContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := s.contacts.GetContacts(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, contacts)
	}
}

func (s *Server) handleGetContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contact, err := s.contacts.GetContact(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, contact)
	}
}

func (s *Server) handleGetContactByPhone() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contact, err := s.contacts.GetContactByPhone(r.Context(), r.URL.Query().Get("phone"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, contact)
	}
}

func (s *Server) handleCreateContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var contact models.Contact
		if !s.decodeBody(w, r, &contact) {
			return
		}
		created, err := s.contacts.CreateContact(r.Context(), &contact)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) handleUpdateContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var contact models.Contact
		if !s.decodeBody(w, r, &contact) {
			return
		}
		contact.ID = mux.Vars(r)["id"]
		updated, err := s.contacts.UpdateContact(r.Context(), &contact)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, updated)
	}
}

// handleImportContacts runs the two-pass admission over the posted batch and
// commits the result in one request. Skips requested by the client are
// applied between the two steps.
func (s *Server) handleImportContacts() http.HandlerFunc {
	type importRequest struct {
		Records     []models.RawRecord `json:"records"`
		SkipIndexes []int              `json:"skipIndexes,omitempty"`
		PreviewOnly bool               `json:"previewOnly,omitempty"`
	}
	type importResponse struct {
		Summary models.ImportSummary  `json:"summary"`
		Records []models.ImportRecord `json:"records"`
		Result  *models.ImportResult  `json:"result,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req importRequest
		if !s.decodeBody(w, r, &req) {
			return
		}

		session, err := s.contacts.NewImportSessionFromStore(r.Context(), req.Records)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		for _, idx := range req.SkipIndexes {
			if err := session.Skip(idx, "skipped by request"); err != nil {
				s.writeError(w, r, err)
				return
			}
		}

		resp := importResponse{
			Summary: session.Summary(),
			Records: session.Records(),
		}

		if !req.PreviewOnly {
			result := s.contacts.ImportBatch(r.Context(), session, nil)
			resp.Result = &result
		}

		s.writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleBulkDeleteContacts() http.HandlerFunc {
	type deleteRequest struct {
		IDs []string `json:"ids"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		result := s.contacts.BulkDelete(r.Context(), req.IDs, nil)
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleListTemplates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := s.templates.GetTemplates(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, templates)
	}
}

func (s *Server) handleCreateTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tmpl models.Template
		if !s.decodeBody(w, r, &tmpl) {
			return
		}
		created, err := s.templates.CreateTemplate(r.Context(), &tmpl)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) handleUpdateTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tmpl models.Template
		if !s.decodeBody(w, r, &tmpl) {
			return
		}
		tmpl.ID = mux.Vars(r)["id"]
		updated, err := s.templates.UpdateTemplate(r.Context(), &tmpl)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) handleDeleteTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.templates.DeleteTemplate(r.Context(), mux.Vars(r)["id"]); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.messages.Snapshot())
	}
}

func (s *Server) handleScheduleMessages() http.HandlerFunc {
	type scheduleRequest struct {
		ContactIDs []string `json:"contactIds"`
		TemplateID string   `json:"templateId"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		if len(req.ContactIDs) == 0 {
			s.writeError(w, r, errors.NewValidationError("contactIds", "at least one contact is required"))
			return
		}

		window, err := s.settings.Current(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		result, err := s.messages.Schedule(r.Context(), req.ContactIDs, req.TemplateID, window, time.Now())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleBulkDeleteMessages() http.HandlerFunc {
	type deleteRequest struct {
		IDs []string `json:"ids"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		result := s.messages.BulkDelete(r.Context(), req.IDs, nil)
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleCancelMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.messages.Cancel(r.Context(), mux.Vars(r)["id"]); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleRetryMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.messages.Retry(r.Context(), mux.Vars(r)["id"]); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleGetWindow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := s.settings.Current(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, window)
	}
}

func (s *Server) handleUpdateWindow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg models.SendingWindowConfig
		if !s.decodeBody(w, r, &cfg) {
			return
		}
		if err := s.settings.Update(r.Context(), &cfg); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, &cfg)
	}
}

func (s *Server) handleStatusWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event models.ChannelEvent
		if !s.decodeBody(w, r, &event) {
			return
		}
		if event.Event != models.EventStatusUpdate && event.Event != models.EventMessageSent {
			s.logger.WithField("event", event.Event).Debug("Ignoring unhandled webhook event type")
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := s.events.HandleEvent(r.Context(), &event.Payload); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, errors.NewValidationError("body", "invalid JSON payload"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFor(err)

	entry := s.logger.WithError(err).WithField(service.LogFieldURL, r.URL.Path)
	if status >= 500 {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	resp := map[string]string{
		"error": "internal error",
		"code":  string(errors.ErrCodeInternalError),
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		resp["code"] = string(appErr.Code)
		if appErr.UserMessage != "" {
			resp["error"] = appErr.UserMessage
		} else {
			resp["error"] = appErr.Message
		}
	}

	s.writeJSON(w, status, resp)
}

func httpStatusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsConflict(err):
		return http.StatusConflict
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeValidationFailed, errors.ErrCodeMissingPhone, errors.ErrCodeInvalidConfig, errors.ErrCodeMissingConfig:
		return http.StatusBadRequest
	case errors.ErrCodeIllegalTransition:
		return http.StatusConflict
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
