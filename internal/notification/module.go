// Package notification provides event handlers for sending notifications
// in response to domain events. The module subscribes to events and
// inverts the dependency: domain modules never touch email providers.
package notification

import (
	"context"

	"supply_portal_backend/internal/email"
	"supply_portal_backend/internal/events"
	"supply_portal_backend/internal/idempotency"
	"supply_portal_backend/platform/config"
	"supply_portal_backend/platform/logger"
)

const (
	opAgreementCreatedNotify    = "agreement.created.notify"
	opAgreementCreatedAnalytics = "agreement.created.analytics"
)

// Module handles all notification-related event subscriptions. Side
// effects run through the idempotency ledger so a republished event does
// not repeat them.
type Module struct {
	ledger *idempotency.Ledger
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates a new notification module.
func New(ledger *idempotency.Ledger, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		ledger: ledger,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// Register subscribes the module to the events it handles.
func (m *Module) Register(bus events.Bus) {
	bus.Subscribe(events.AgreementCreated{}.EventName(), m)
	bus.Subscribe(events.DeliveryFallbackApplied{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.AgreementCreated:
		return m.handleAgreementCreated(ctx, e)
	case events.DeliveryFallbackApplied:
		return m.handleDeliveryFallbackApplied(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleAgreementCreated(ctx context.Context, e events.AgreementCreated) error {
	ran, err := m.ledger.ProcessOnce(ctx, e.AgreementID, opAgreementCreatedNotify, func(ctx context.Context) error {
		to := m.cfg.GetOpsNotifyEmail()
		if to == "" {
			return nil
		}
		return m.sender.SendAgreementCreatedEmail(ctx, to, e.AgreementID.String())
	})
	if err != nil {
		m.log.Error("agreement created notification failed",
			"agreementId", e.AgreementID, "error", err)
		return err
	}
	if !ran {
		m.log.Debug("agreement created notification already sent", "agreementId", e.AgreementID)
	}

	_, err = m.ledger.ProcessOnce(ctx, e.AgreementID, opAgreementCreatedAnalytics, func(context.Context) error {
		m.log.Info("agreement created",
			"agreementId", e.AgreementID,
			"providerId", e.ProviderID,
			"consumerId", e.ConsumerID,
			"minDailyQuantity", e.MinDailyQuantity,
			"maxDailyQuantity", e.MaxDailyQuantity,
			"noticePeriodHours", e.NoticePeriodHours)
		return nil
	})
	return err
}

func (m *Module) handleDeliveryFallbackApplied(ctx context.Context, e events.DeliveryFallbackApplied) error {
	_, err := m.ledger.ProcessOnce(ctx, e.DeliveryID, "delivery.fallback.analytics", func(context.Context) error {
		m.log.Info("fallback quantity applied",
			"deliveryId", e.DeliveryID,
			"agreementId", e.AgreementID,
			"serviceDate", e.ServiceDate.Format("2006-01-02"),
			"quantityApplied", e.QuantityApplied)
		return nil
	})
	return err
}
