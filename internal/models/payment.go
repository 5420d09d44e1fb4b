package models

import "time"

const (
	// ConfirmationPending оплата подтверждена провайдером, запись ещё не создана.
	ConfirmationPending = "pending"
	// ConfirmationEnrolled запись в журнале создана.
	ConfirmationEnrolled = "enrolled"
	// ConfirmationFailed запись не удалась, требуется повтор.
	ConfirmationFailed = "failed"
)

// PaymentConfirmation промежуточная запись между оплатой и зачислением.
type PaymentConfirmation struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	CourseID      int64     `json:"course_id"`
	UserID        int64     `json:"user_id"`
	AmountCharged int64     `json:"amount_charged"`
	Status        string    `json:"status"`
	LastError     string    `json:"last_error,omitempty"`
	Attempts      int       `json:"attempts"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
