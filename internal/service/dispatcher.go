package service

import (
	"context"
	"time"

	"campaigner/internal/errors"
	"campaigner/internal/metrics"
	"campaigner/internal/models"
	"campaigner/internal/privacy"
	"campaigner/internal/security"

	"github.com/sirupsen/logrus"
)

// ChannelSender is the outbound surface of the external messaging channel.
type ChannelSender interface {
	SendText(ctx context.Context, phone, text string) (string, error)
	SendImage(ctx context.Context, phone, imagePath, caption string) (string, error)
}

// ContactGetter resolves contact IDs to contacts at dispatch time.
type ContactGetter interface {
	GetContact(ctx context.Context, id string) (*models.Contact, error)
}

// WindowProvider supplies the currently configured sending window.
type WindowProvider interface {
	Current(ctx context.Context) (*models.SendingWindowConfig, error)
}

// Dispatcher periodically hands due messages to the external channel,
// honoring the sending window. Failed sends are recorded on the message and
// picked up again only through an explicit retry.
type Dispatcher struct {
	store     *MessageService
	contacts  ContactGetter
	channel   ChannelSender
	window    WindowProvider
	interval  time.Duration
	batchSize int
	logger    *logrus.Logger
	stopCh    chan struct{}
}

func NewDispatcher(store *MessageService, contacts ContactGetter, channel ChannelSender, window WindowProvider, interval time.Duration, batchSize int, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		contacts:  contacts,
		channel:   channel,
		window:    window,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.WithField("interval", d.interval).Info("Starting message dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Dispatcher context cancelled, stopping")
			return
		case <-d.stopCh:
			d.logger.Info("Dispatcher stop signal received, stopping")
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Dispatcher) Stop() {
	close(d.stopCh)
}

func (d *Dispatcher) tick(ctx context.Context) {
	cfg, err := d.window.Current(ctx)
	if err != nil {
		d.logger.WithError(err).Error("Failed to load sending window")
		return
	}
	if !cfg.IsActive {
		return
	}

	now := time.Now()
	if !WithinWindow(cfg, now) {
		return
	}

	claimed, err := d.store.ClaimDue(ctx, now, d.batchSize)
	if err != nil {
		d.logger.WithError(err).Error("Failed to claim due messages")
		return
	}
	if len(claimed) == 0 {
		return
	}

	metrics.SetGauge("dispatch_claimed", float64(len(claimed)), nil, "Messages claimed in the last tick")
	for i := range claimed {
		d.dispatchOne(ctx, &claimed[i])
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, msg *models.ScheduledMessage) {
	contact, err := d.contacts.GetContact(ctx, msg.ContactID)
	if err == nil && contact == nil {
		err = errors.NewNotFoundError("contact", msg.ContactID)
	}
	if err != nil {
		d.fail(ctx, msg.ID, err)
		return
	}

	var externalID string
	if msg.ImagePathSnapshot != nil && *msg.ImagePathSnapshot != "" {
		// Snapshots are validated at template creation; re-check here so a
		// row written before that rule existed never reaches the filesystem.
		if err := security.ValidateImagePath(*msg.ImagePathSnapshot); err != nil {
			d.fail(ctx, msg.ID, errors.NewValidationError("imagePath", err.Error()))
			return
		}
		externalID, err = d.channel.SendImage(ctx, contact.PhoneNumber, *msg.ImagePathSnapshot, msg.ContentSnapshot)
	} else {
		externalID, err = d.channel.SendText(ctx, contact.PhoneNumber, msg.ContentSnapshot)
	}
	if err != nil {
		d.fail(ctx, msg.ID, err)
		return
	}

	if err := d.store.MarkDispatched(ctx, msg.ID, externalID, time.Now()); err != nil {
		d.logger.WithError(err).WithField("messageId", msg.ID).Error("Failed to record dispatch")
		return
	}

	metrics.IncrementCounter("dispatch_sent", nil, "Messages handed to the channel")
	d.logger.WithFields(logrus.Fields{
		"messageId": msg.ID,
		"phone":     privacy.MaskPhoneNumber(contact.PhoneNumber),
	}).Info("Message sent")
}

func (d *Dispatcher) fail(ctx context.Context, id string, cause error) {
	metrics.IncrementCounter("dispatch_failed", nil, "Messages that failed to send")
	errors.LogWarn(d.logger, cause, "Message dispatch failed", logrus.Fields{"messageId": id})
	if err := d.store.MarkFailed(ctx, id, cause.Error()); err != nil {
		d.logger.WithError(err).WithField("messageId", id).Error("Failed to record dispatch failure")
	}
}
