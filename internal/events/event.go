// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"supply_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Agreement Domain Events
// =============================================================================

// AgreementCreated is published when a new agreement is created.
type AgreementCreated struct {
	BaseEvent
	AgreementID       uuid.UUID `json:"agreementId"`
	ProviderID        uuid.UUID `json:"providerId"`
	ConsumerID        uuid.UUID `json:"consumerId"`
	MinDailyQuantity  int       `json:"minDailyQuantity"`
	MaxDailyQuantity  int       `json:"maxDailyQuantity"`
	NoticePeriodHours int       `json:"noticePeriodHours"`
}

func (e AgreementCreated) EventName() string { return "agreements.created" }

// AgreementPaused is published when an agreement is paused.
type AgreementPaused struct {
	BaseEvent
	AgreementID uuid.UUID `json:"agreementId"`
}

func (e AgreementPaused) EventName() string { return "agreements.paused" }

// AgreementResumed is published when a paused agreement becomes active again.
type AgreementResumed struct {
	BaseEvent
	AgreementID uuid.UUID `json:"agreementId"`
}

func (e AgreementResumed) EventName() string { return "agreements.resumed" }

// AgreementTerminated is published when an agreement is terminated.
type AgreementTerminated struct {
	BaseEvent
	AgreementID uuid.UUID `json:"agreementId"`
}

func (e AgreementTerminated) EventName() string { return "agreements.terminated" }

// =============================================================================
// Delivery Domain Events
// =============================================================================

// DeliveryExpectedConfirmed is published when a provider confirms the expected
// quantity for a delivery date.
type DeliveryExpectedConfirmed struct {
	BaseEvent
	DeliveryID       uuid.UUID `json:"deliveryId"`
	AgreementID      uuid.UUID `json:"agreementId"`
	ServiceDate      time.Time `json:"serviceDate"`
	ExpectedQuantity int       `json:"expectedQuantity"`
}

func (e DeliveryExpectedConfirmed) EventName() string { return "deliveries.expected_confirmed" }

// DeliveryServedConfirmed is published when the served quantity is confirmed
// and the delivery is finalized.
type DeliveryServedConfirmed struct {
	BaseEvent
	DeliveryID     uuid.UUID `json:"deliveryId"`
	AgreementID    uuid.UUID `json:"agreementId"`
	ServiceDate    time.Time `json:"serviceDate"`
	ServedQuantity int       `json:"servedQuantity"`
}

func (e DeliveryServedConfirmed) EventName() string { return "deliveries.served_confirmed" }

// DeliveryFallbackApplied is published when the fallback batch substitutes the
// agreement minimum for an unconfirmed delivery past its deadline.
type DeliveryFallbackApplied struct {
	BaseEvent
	DeliveryID      uuid.UUID `json:"deliveryId"`
	AgreementID     uuid.UUID `json:"agreementId"`
	ServiceDate     time.Time `json:"serviceDate"`
	QuantityApplied int       `json:"quantityApplied"`
}

func (e DeliveryFallbackApplied) EventName() string { return "deliveries.fallback_applied" }
