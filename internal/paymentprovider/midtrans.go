package paymentprovider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

const (
	midtransOrderPrefix = "course-"
	// MidtransCurrency единственная валюта Snap. В рупии нет дробных единиц,
	// поэтому суммы в минимальных единицах делятся на midtransMinorUnits.
	MidtransCurrency   = "idr"
	midtransMinorUnits = 100
	midtransNameLimit  = 50
)

// ErrUnsupportedCurrency валюта не поддерживается провайдером.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// MidtransClient hosted checkout через Midtrans Snap. Идентификатор сессии
// совпадает с order_id и содержит id курса: "course-<id>-<uuid>".
type MidtransClient struct {
	snap snap.Client
	core coreapi.Client
}

// NewMidtransClient создаёт клиент для sandbox или production окружения.
func NewMidtransClient(serverKey string, production bool) *MidtransClient {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	c := &MidtransClient{}
	c.snap.New(serverKey, env)
	c.core.New(serverKey, env)
	return c
}

// CreateCheckoutSession создаёт транзакцию Snap и возвращает её redirect URL.
// Snap не принимает отдельный cancel URL, пользователь возвращается на Finish.
func (c *MidtransClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error) {
	const op = "paymentprovider.Midtrans.CreateCheckoutSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	req, err := snapRequest(p, midtransOrderID(p.CourseID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	orderID := req.TransactionDetails.OrderID

	resp, mErr := c.snap.CreateTransaction(req)
	if mErr != nil {
		return nil, fmt.Errorf("%s: %s", op, mErr.Message)
	}
	return &Session{
		ID:            orderID,
		URL:           resp.RedirectURL,
		AmountTotal:   req.TransactionDetails.GrossAmt * midtransMinorUnits,
		CustomerEmail: p.CustomerEmail,
		CourseID:      strconv.FormatInt(p.CourseID, 10),
	}, nil
}

// RetrieveSession читает статус транзакции через Core API.
func (c *MidtransClient) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	const op = "paymentprovider.Midtrans.RetrieveSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	courseID, ok := courseIDFromOrder(sessionID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}

	resp, mErr := c.core.CheckTransaction(sessionID)
	if mErr != nil {
		if mErr.StatusCode == 404 {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%s: %s", op, mErr.Message)
	}

	return &Session{
		ID:            sessionID,
		PaymentStatus: midtransPaymentStatus(resp.TransactionStatus, resp.FraudStatus),
		AmountTotal:   parseGrossAmount(resp.GrossAmount),
		CourseID:      courseID,
	}, nil
}

// snapRequest собирает запрос Snap. UnitAmount приходит в минимальных единицах
// и переводится в целые рупии.
func snapRequest(p CheckoutParams, orderID string) (*snap.Request, error) {
	if !strings.EqualFold(p.Currency, MidtransCurrency) {
		return nil, fmt.Errorf("%w: %q, midtrans accepts only %s", ErrUnsupportedCurrency, p.Currency, MidtransCurrency)
	}
	gross := toRupiah(p.UnitAmount)
	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			Email: p.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    strconv.FormatInt(p.CourseID, 10),
			Name:  truncate(p.ProductName, midtransNameLimit),
			Price: gross,
			Qty:   1,
		}},
		Callbacks: &snap.Callbacks{
			Finish: strings.ReplaceAll(p.SuccessURL, "{CHECKOUT_SESSION_ID}", orderID),
		},
	}, nil
}

func toRupiah(minor int64) int64 {
	return (minor + midtransMinorUnits/2) / midtransMinorUnits
}

func midtransOrderID(courseID int64) string {
	return fmt.Sprintf("%s%d-%s", midtransOrderPrefix, courseID, uuid.NewString())
}

func courseIDFromOrder(orderID string) (string, bool) {
	rest, ok := strings.CutPrefix(orderID, midtransOrderPrefix)
	if !ok {
		return "", false
	}
	id, _, ok := strings.Cut(rest, "-")
	if !ok || id == "" {
		return "", false
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", false
	}
	return id, true
}

// midtransPaymentStatus приводит статус транзакции к статусу сессии:
// settlement и capture без подозрения на фрод считаются оплатой.
func midtransPaymentStatus(transactionStatus, fraudStatus string) string {
	switch strings.ToLower(transactionStatus) {
	case "settlement":
		return PaymentStatusPaid
	case "capture":
		if fraudStatus == "" || strings.EqualFold(fraudStatus, "accept") {
			return PaymentStatusPaid
		}
		return "unpaid"
	case "pending":
		return "unpaid"
	default:
		return strings.ToLower(transactionStatus)
	}
}

// parseGrossAmount разбирает сумму в рупиях вида "150000.00" в минимальные единицы,
// как у остальных провайдеров.
func parseGrossAmount(s string) int64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * midtransMinorUnits))
}

// truncate обрезает s до n байт, не разрывая UTF-8 символ.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
