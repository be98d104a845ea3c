package shipping

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shipping"
)

// ConfirmRequest books one quoted candidate
type ConfirmRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
}

// CandidateResponse is one carrier offer in API responses
type CandidateResponse struct {
	ID           string `json:"id"`
	Carrier      string `json:"carrier"`
	Service      string `json:"service"`
	Cost         string `json:"cost"`
	Currency     string `json:"currency"`
	EstimateDays int    `json:"estimate_days"`
}

// QuoteResponse is the API representation of a quote
type QuoteResponse struct {
	ID         uuid.UUID           `json:"id"`
	OrderID    uuid.UUID           `json:"order_id"`
	Status     string              `json:"status"`
	Candidates []CandidateResponse `json:"candidates"`
	ExpiresAt  time.Time           `json:"expires_at"`
}

// ConfirmationResponse is the API representation of a booked shipment
type ConfirmationResponse struct {
	QuoteID     uuid.UUID `json:"quote_id"`
	OrderID     uuid.UUID `json:"order_id"`
	CandidateID string    `json:"candidate_id"`
	ShipmentRef string    `json:"shipment_ref"`
}

// ToQuoteResponse converts a domain quote to its API representation
func ToQuoteResponse(q *shipping.Quote) QuoteResponse {
	candidates := make([]CandidateResponse, 0, len(q.Candidates))
	for _, c := range q.Candidates {
		candidates = append(candidates, CandidateResponse{
			ID:           c.ID,
			Carrier:      c.Carrier,
			Service:      c.Service,
			Cost:         c.Cost.StringFixed(2),
			Currency:     c.Currency,
			EstimateDays: c.EstimateDay,
		})
	}
	return QuoteResponse{
		ID:         q.ID,
		OrderID:    q.OrderID,
		Status:     string(q.Status),
		Candidates: candidates,
		ExpiresAt:  q.ExpiresAt,
	}
}

// ToConfirmationResponse converts a confirmed quote to its API representation
func ToConfirmationResponse(q *shipping.Quote) ConfirmationResponse {
	return ConfirmationResponse{
		QuoteID:     q.ID,
		OrderID:     q.OrderID,
		CandidateID: q.ChosenID,
		ShipmentRef: q.ShipmentRef,
	}
}
