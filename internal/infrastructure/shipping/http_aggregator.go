package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 1 * 1024 * 1024 // 1MB max response

// HTTPAggregator implements shipping.Aggregator against the carrier rate
// aggregator's REST API. Transport failures and 5xx responses surface as
// shared.ErrUpstreamUnavailable so callers can degrade gracefully.
type HTTPAggregator struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPAggregator creates an aggregator client from configuration
func NewHTTPAggregator(cfg config.ShippingConfig) *HTTPAggregator {
	return &HTTPAggregator{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type rateRequestBody struct {
	OrderRef    string `json:"order_ref"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city"`
	Region      string `json:"region,omitempty"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	WeightGrams int64  `json:"weight_grams"`
	ItemCount   int64  `json:"item_count"`
}

type rateOffer struct {
	OfferID     string `json:"offer_id"`
	Carrier     string `json:"carrier"`
	Service     string `json:"service"`
	CostCents   int64  `json:"cost_cents"`
	Currency    string `json:"currency"`
	EstimateDay int    `json:"estimate_days"`
}

type ratesResponse struct {
	Offers []rateOffer `json:"offers"`
}

type bookRequestBody struct {
	OfferID string `json:"offer_id"`
}

type bookResponse struct {
	ShipmentRef string `json:"shipment_ref"`
}

// RequestRates fetches carrier offers for a shipment
func (a *HTTPAggregator) RequestRates(ctx context.Context, req shipping.RateRequest) ([]shipping.Candidate, error) {
	body := rateRequestBody{
		OrderRef:    req.OrderRef,
		Line1:       req.Destination.Line1(),
		Line2:       req.Destination.Line2(),
		City:        req.Destination.City(),
		Region:      req.Destination.Region(),
		PostalCode:  req.Destination.PostalCode(),
		Country:     req.Destination.Country(),
		WeightGrams: req.WeightGrams,
		ItemCount:   req.ItemCount,
	}

	var out ratesResponse
	if err := a.post(ctx, "/v1/rates", body, &out); err != nil {
		return nil, err
	}
	if len(out.Offers) == 0 {
		return nil, shared.NewDomainError("NO_RATES", "Aggregator returned no offers for shipment "+req.OrderRef)
	}

	candidates := make([]shipping.Candidate, 0, len(out.Offers))
	for _, offer := range out.Offers {
		candidates = append(candidates, shipping.Candidate{
			ID:          offer.OfferID,
			Carrier:     offer.Carrier,
			Service:     offer.Service,
			Cost:        decimal.New(offer.CostCents, -2),
			Currency:    offer.Currency,
			EstimateDay: offer.EstimateDay,
		})
	}
	return candidates, nil
}

// Book books a quoted offer and returns the aggregator's shipment reference.
// The aggregator side is idempotent per offer id, so retrying a booking
// returns the same reference.
func (a *HTTPAggregator) Book(ctx context.Context, offerID string) (string, error) {
	var out bookResponse
	if err := a.post(ctx, "/v1/bookings", bookRequestBody{OfferID: offerID}, &out); err != nil {
		return "", err
	}
	if out.ShipmentRef == "" {
		return "", fmt.Errorf("aggregator booking for offer %s returned no shipment reference", offerID)
	}
	return out.ShipmentRef, nil
}

// post sends a JSON request and decodes the JSON response
func (a *HTTPAggregator) post(ctx context.Context, path string, in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal aggregator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create aggregator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", shared.ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: aggregator returned status %d", shared.ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Aggregator rejected request with status %d: %s", resp.StatusCode, string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode aggregator response: %w", err)
	}
	return nil
}

var _ shipping.Aggregator = (*HTTPAggregator)(nil)
