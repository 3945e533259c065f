// Package payment integrates with the external checkout provider. The
// provider owns the payment flow end to end; this service only opens a
// session and later learns the outcome through the reconcile endpoint.
package payment

import (
	"context"
	"fmt"
	"net/http"

	"gateless/pkg/client"
	apperrors "gateless/pkg/errors"
	"gateless/pkg/logger"
)

// SessionRequest describes the checkout session to open. BookingID doubles
// as the correlation token the provider echoes back on reconcile.
type SessionRequest struct {
	BookingID   string  `json:"booking_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	SuccessURL  string  `json:"success_url"`
	CancelURL   string  `json:"cancel_url"`
}

// Session is the provider's handle for an opened checkout.
type Session struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// Provider opens checkout sessions with the external payment service.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// HTTPProvider talks to the payment service over its REST API.
type HTTPProvider struct {
	client *client.HttpClient
	log    *logger.Logger
}

func NewHTTPProvider(baseURL string, log *logger.Logger) *HTTPProvider {
	return &HTTPProvider{
		client: client.NewHttpClient(baseURL),
		log:    log,
	}
}

func (p *HTTPProvider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	resp, err := p.client.POST(ctx, "/v1/checkout/sessions", req)
	if err != nil {
		return nil, apperrors.UnavailableWrapped("payment service unreachable", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		p.log.Error("Payment session creation rejected",
			"status", resp.StatusCode,
			"booking_id", req.BookingID,
		)
		return nil, apperrors.Unavailable(fmt.Sprintf("payment service returned status %d", resp.StatusCode))
	}

	var session Session
	if err := resp.DecodeJSON(&session); err != nil {
		return nil, apperrors.UnavailableWrapped("invalid payment service response", err)
	}
	if session.ID == "" || session.RedirectURL == "" {
		return nil, apperrors.Unavailable("payment service returned incomplete session")
	}

	return &session, nil
}
