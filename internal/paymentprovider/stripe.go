package paymentprovider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// StripeClient клиент REST API Stripe Checkout.
type StripeClient struct {
	http *resty.Client
}

type stripeSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewStripeClient создаёт клиент с авторизацией по секретному ключу.
func NewStripeClient(secretKey, apiURL string, timeout time.Duration) *StripeClient {
	return &StripeClient{
		http: resty.New().
			SetBaseURL(apiURL).
			SetAuthToken(secretKey).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// CreateCheckoutSession создаёт сессию с одной позицией и метаданными courseId.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error) {
	const op = "paymentprovider.Stripe.CreateCheckoutSession"
	courseID := strconv.FormatInt(p.CourseID, 10)

	var out stripeSession
	var apiErr stripeError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"mode":                                          "payment",
			"payment_method_types[0]":                       "card",
			"line_items[0][quantity]":                       "1",
			"line_items[0][price_data][currency]":           p.Currency,
			"line_items[0][price_data][unit_amount]":        strconv.FormatInt(p.UnitAmount, 10),
			"line_items[0][price_data][product_data][name]": p.ProductName,
			"metadata[courseId]":                            courseID,
			"customer_email":                                p.CustomerEmail,
			"success_url":                                   p.SuccessURL,
			"cancel_url":                                    p.CancelURL,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: status %d: %s", op, resp.StatusCode(), apiErr.Error.Message)
	}
	return out.toSession(), nil
}

// RetrieveSession читает сессию по идентификатору.
func (c *StripeClient) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	const op = "paymentprovider.Stripe.RetrieveSession"

	var out stripeSession
	var apiErr stripeError
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", sessionID).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v1/checkout/sessions/{id}")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: status %d: %s", op, resp.StatusCode(), apiErr.Error.Message)
	}
	return out.toSession(), nil
}

func (s *stripeSession) toSession() *Session {
	return &Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: s.PaymentStatus,
		AmountTotal:   s.AmountTotal,
		CustomerEmail: s.CustomerEmail,
		CourseID:      s.Metadata["courseId"],
	}
}
