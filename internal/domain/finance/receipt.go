package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Receipt number prefixes
const (
	ReceiptPrefixPayment        = "RCP"
	ReceiptPrefixTeacherPayment = "TPY"
)

// FormatReceiptNumber renders PREFIX-YYYYMM-NNNN. Sequences above 9999 widen
// the numeric part rather than wrapping.
func FormatReceiptNumber(prefix string, t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, t.Format("200601"), seq)
}

// ReceiptScope identifies one independent receipt sequence
type ReceiptScope struct {
	Prefix    string
	Month     string
	TeacherID *uuid.UUID
}

// Key returns a stable string key for counter storage
func (s ReceiptScope) Key() string {
	if s.TeacherID != nil {
		return fmt.Sprintf("%s:%s:%s", s.Prefix, s.Month, s.TeacherID.String())
	}
	return fmt.Sprintf("%s:%s", s.Prefix, s.Month)
}

// PaymentReceiptScope is the sequence for a teacher's student payments in the month of t
func PaymentReceiptScope(teacherID uuid.UUID, t time.Time) ReceiptScope {
	return ReceiptScope{Prefix: ReceiptPrefixPayment, Month: t.Format("200601"), TeacherID: &teacherID}
}

// TeacherPaymentReceiptScope is the business-wide teacher payout sequence for the month of t
func TeacherPaymentReceiptScope(t time.Time) ReceiptScope {
	return ReceiptScope{Prefix: ReceiptPrefixTeacherPayment, Month: t.Format("200601")}
}

// ReceiptCounter hands out strictly increasing sequence numbers per scope.
// Implementations must be atomic across concurrent callers and processes.
type ReceiptCounter interface {
	Next(ctx context.Context, scope ReceiptScope) (int64, error)
}

// IssueReceiptNumber draws the next sequence for scope and formats it
func IssueReceiptNumber(ctx context.Context, counter ReceiptCounter, scope ReceiptScope, at time.Time) (string, error) {
	seq, err := counter.Next(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("issue %s receipt number: %w", scope.Prefix, err)
	}
	return FormatReceiptNumber(scope.Prefix, at, seq), nil
}
