package service

import (
	"context"
	"time"

	"campaigner/internal/errors"
	"campaigner/internal/metrics"
	"campaigner/internal/models"
	"campaigner/internal/privacy"
	"campaigner/internal/validation"

	"github.com/sirupsen/logrus"
)

// Reconciler absorbs delivery events pushed by the external channel and
// keeps the message store consistent. Events may be duplicated or arrive out
// of order; correctness comes from the store's monotonic-rank rule, not from
// ordering. Bursts of DELIVERED/READ updates are coalesced into one refresh
// against the backing store through a shared debouncer.
type Reconciler struct {
	store  *MessageService
	logger *logrus.Logger

	debouncer *Debouncer
}

func NewReconciler(store *MessageService, quietPeriod time.Duration, logger *logrus.Logger) *Reconciler {
	r := &Reconciler{
		store:  store,
		logger: logger,
	}
	r.debouncer = NewDebouncer(quietPeriod, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.Reload(ctx); err != nil {
			logger.WithError(err).Error("Debounced reconciliation reload failed")
			return
		}
		metrics.IncrementCounter("reconcile_reloads", nil, "Consolidated store reloads")
		logger.Debug("Consolidated reconciliation reload complete")
	})
	return r
}

// HandleEvent applies one status event. An event for an external ID the local
// store does not know is treated as a cache miss: the whole store is reloaded
// from the backing store instead of patching blind.
func (r *Reconciler) HandleEvent(ctx context.Context, event *models.StatusEvent) error {
	if event.ExternalID == "" {
		return errors.NewValidationError("externalId", "event has no external id")
	}
	if err := validation.ValidateExternalID(event.ExternalID); err != nil {
		return err
	}

	applied, err := r.store.ApplyEvent(ctx, event)
	if err != nil {
		if errors.IsNotFound(err) {
			r.logger.WithField("externalId", privacy.MaskExternalID(event.ExternalID)).
				Info("Status event for unknown message, reloading store")
			metrics.IncrementCounter("reconcile_cache_misses", nil, "Events for messages missing locally")
			if reloadErr := r.store.Reload(ctx); reloadErr != nil {
				return reloadErr
			}
			// One more attempt after the reload; a miss now means the
			// backing store has never seen this ID either.
			if _, retryErr := r.store.ApplyEvent(ctx, event); retryErr != nil && !errors.IsNotFound(retryErr) {
				return retryErr
			}
			return nil
		}
		return err
	}

	if !applied {
		// Stale or duplicate delivery, ignored on purpose.
		metrics.IncrementCounter("reconcile_events_discarded", nil, "Stale or duplicate status events")
		return nil
	}

	metrics.IncrementCounter("reconcile_events_applied", map[string]string{
		"status": string(event.Status),
	}, "Applied status events")

	if event.Status == models.MessageStatusDelivered || event.Status == models.MessageStatusRead {
		r.debouncer.Trigger()
	}
	return nil
}

// Stop cancels any pending debounced reload.
func (r *Reconciler) Stop() {
	r.debouncer.Stop()
}
