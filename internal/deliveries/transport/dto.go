package transport

import (
	"time"

	"supply_portal_backend/internal/deliveries/domain"

	"github.com/google/uuid"
)

// ConfirmQuantityRequest carries a quantity confirmation for a delivery.
type ConfirmQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GenerateRequest asks for delivery generation over a date window.
type GenerateRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

// DeliveryResponse represents a delivery in API responses.
type DeliveryResponse struct {
	ID                  uuid.UUID `json:"id"`
	AgreementID         uuid.UUID `json:"agreementId"`
	ServiceDate         string    `json:"serviceDate"`
	ExpectedQuantity    *int      `json:"expectedQuantity,omitempty"`
	ServedQuantity      *int      `json:"servedQuantity,omitempty"`
	ExpectedConfirmedAt *string   `json:"expectedConfirmedAt,omitempty"`
	ServedConfirmedAt   *string   `json:"servedConfirmedAt,omitempty"`
	Status              string    `json:"status"`
}

// DeliveryListResponse wraps a list of deliveries.
type DeliveryListResponse struct {
	Items []DeliveryResponse `json:"items"`
	Total int                `json:"total"`
}

// ToResponse maps a delivery entity to its API representation.
func ToResponse(d *domain.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:                  d.ID,
		AgreementID:         d.AgreementID,
		ServiceDate:         d.ServiceDate.Format("2006-01-02"),
		ExpectedQuantity:    d.ExpectedQuantity,
		ServedQuantity:      d.ServedQuantity,
		ExpectedConfirmedAt: formatTime(d.ExpectedConfirmedAt),
		ServedConfirmedAt:   formatTime(d.ServedConfirmedAt),
		Status:              string(d.Status),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
