package transport

import "github.com/google/uuid"

// CreateAgreementRequest contains data for creating a new agreement.
type CreateAgreementRequest struct {
	ProviderID        uuid.UUID `json:"providerId" validate:"required"`
	ConsumerID        uuid.UUID `json:"consumerId" validate:"required"`
	PricePerUnitCents int       `json:"pricePerUnitCents" validate:"min=0"`
	MinDailyQuantity  int       `json:"minDailyQuantity" validate:"min=0"`
	MaxDailyQuantity  int       `json:"maxDailyQuantity" validate:"min=0"`
	NoticePeriodHours int       `json:"noticePeriodHours" validate:"min=0"`
	DeliveryWeekdays  []int     `json:"deliveryWeekdays" validate:"required,min=1,max=7,dive,min=1,max=7"`
}

// AgreementResponse represents an agreement in API responses.
type AgreementResponse struct {
	ID                uuid.UUID `json:"id"`
	ProviderID        uuid.UUID `json:"providerId"`
	ConsumerID        uuid.UUID `json:"consumerId"`
	PricePerUnitCents int       `json:"pricePerUnitCents"`
	MinDailyQuantity  int       `json:"minDailyQuantity"`
	MaxDailyQuantity  int       `json:"maxDailyQuantity"`
	NoticePeriodHours int       `json:"noticePeriodHours"`
	DeliveryWeekdays  []int     `json:"deliveryWeekdays"`
	Status            string    `json:"status"`
	CreatedAt         string    `json:"createdAt"`
	UpdatedAt         string    `json:"updatedAt"`
}

// AgreementListResponse wraps a list of agreements.
type AgreementListResponse struct {
	Items []AgreementResponse `json:"items"`
	Total int                 `json:"total"`
}
