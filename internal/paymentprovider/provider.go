// Package paymentprovider содержит клиентов платёжных провайдеров
// с hosted checkout: Stripe Checkout и Midtrans Snap.
package paymentprovider

import (
	"context"
	"errors"
)

// PaymentStatusPaid статус сессии, оплата которой завершена.
const PaymentStatusPaid = "paid"

// ErrSessionNotFound провайдер не знает такую сессию.
var ErrSessionNotFound = errors.New("checkout session not found")

// CheckoutParams параметры новой сессии оплаты одного курса.
type CheckoutParams struct {
	CourseID      int64
	ProductName   string
	UnitAmount    int64 // в минимальных единицах валюты
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Session сессия оплаты на стороне провайдера.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   int64
	CustomerEmail string
	CourseID      string
}

// Paid сообщает, завершена ли оплата.
func (s *Session) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// Provider создаёт сессии оплаты и читает их состояние.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}
