package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	financeapp "github.com/tutorcenter/backend/internal/application/finance"
	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
	"github.com/tutorcenter/backend/tests/testutil"
)

type paymentFixture struct {
	payments *testutil.MockPaymentRepository
	students *testutil.MockStudentRepository
	receipts *testutil.MockReceiptCounter
	handler  *PaymentHandler
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		payments: new(testutil.MockPaymentRepository),
		students: new(testutil.MockStudentRepository),
		receipts: new(testutil.MockReceiptCounter),
	}
	f.handler = NewPaymentHandler(financeapp.NewPaymentService(f.payments, f.students, f.receipts, zap.NewNop()))
	return f
}

func newPayment(t *testing.T, student *academic.Student, status finance.PaymentStatus) *finance.Payment {
	t.Helper()
	p, err := finance.NewPayment(student.ID, student.TeacherID, decimal.NewFromInt(1200), "", finance.MethodCash,
		testutil.NewTestTime(), nil, "March lessons", adminActor.UserID)
	require.NoError(t, err)
	if status == finance.PaymentCompleted {
		p.ReceiptNumber = "RCP-2024-000001"
	}
	p.Status = status
	p.ClearDomainEvents()
	return p
}

func TestPaymentHandler_Refund(t *testing.T) {
	const route = "/payments/:id/refund"

	t.Run("admin refunds a completed payment", func(t *testing.T) {
		f := newPaymentFixture()
		st := newStudent(t, teacherActor)
		p := newPayment(t, st, finance.PaymentCompleted)

		f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)
		f.students.On("AdjustBalance", mock.Anything, st.ID, mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(-200))
		})).Return(nil).Once()

		w := perform(t, &adminActor, "POST", route, "/payments/"+p.ID.String()+"/refund",
			map[string]any{"amount": "200", "reason": "Lesson cancelled by the center"}, f.handler.Refund)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := dataMap(t, decodeResponse(t, w))
		assert.Equal(t, "refunded", data["status"])
		refund, ok := data["refund"].(map[string]any)
		require.True(t, ok)
		assertDecimal(t, "200", refund["refundAmount"])
		f.payments.AssertExpectations(t)
		f.students.AssertExpectations(t)
	})

	t.Run("teachers cannot refund", func(t *testing.T) {
		f := newPaymentFixture()
		p := newPayment(t, newStudent(t, teacherActor), finance.PaymentCompleted)

		w := perform(t, &teacherActor, "POST", route, "/payments/"+p.ID.String()+"/refund",
			map[string]any{"amount": "200", "reason": "Duplicate"}, f.handler.Refund)

		assertErrorCode(t, w, http.StatusForbidden, dto.ErrCodeForbidden)
		f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("reason is required", func(t *testing.T) {
		f := newPaymentFixture()
		p := newPayment(t, newStudent(t, teacherActor), finance.PaymentCompleted)

		w := perform(t, &adminActor, "POST", route, "/payments/"+p.ID.String()+"/refund",
			map[string]any{"amount": "200"}, f.handler.Refund)

		resp := assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "reason", resp.Error.Details[0].Field)
	})

	t.Run("amount above the payment", func(t *testing.T) {
		f := newPaymentFixture()
		p := newPayment(t, newStudent(t, teacherActor), finance.PaymentCompleted)
		f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)

		w := perform(t, &adminActor, "POST", route, "/payments/"+p.ID.String()+"/refund",
			map[string]any{"amount": "5000", "reason": "Duplicate"}, f.handler.Refund)

		assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.Equal(t, finance.PaymentCompleted, p.Status)
		f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("pending payments cannot be refunded", func(t *testing.T) {
		f := newPaymentFixture()
		p := newPayment(t, newStudent(t, teacherActor), finance.PaymentPending)
		f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)

		w := perform(t, &adminActor, "POST", route, "/payments/"+p.ID.String()+"/refund",
			map[string]any{"amount": "200", "reason": "Duplicate"}, f.handler.Refund)

		assertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	})
}

func TestPaymentHandler_Cancel(t *testing.T) {
	const route = "/payments/:id/cancel"

	t.Run("without a body", func(t *testing.T) {
		f := newPaymentFixture()
		p := newPayment(t, newStudent(t, teacherActor), finance.PaymentPending)
		f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)

		w := perform(t, &teacherActor, "POST", route, "/payments/"+p.ID.String()+"/cancel", nil, f.handler.Cancel)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "cancelled", dataMap(t, decodeResponse(t, w))["status"])
	})

	t.Run("with a reason", func(t *testing.T) {
		f := newPaymentFixture()
		p := newPayment(t, newStudent(t, teacherActor), finance.PaymentPending)
		f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.payments.On("Update", mock.Anything, p).Return(nil)

		w := perform(t, &teacherActor, "POST", route, "/payments/"+p.ID.String()+"/cancel",
			ReasonRequest{Reason: "Family moved"}, f.handler.Cancel)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Family moved", p.StatusReason)
	})

	t.Run("foreign payment is hidden", func(t *testing.T) {
		f := newPaymentFixture()
		p := newPayment(t, newStudent(t, adminActor), finance.PaymentPending)
		f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)

		w := perform(t, &teacherActor, "POST", route, "/payments/"+p.ID.String()+"/cancel", nil, f.handler.Cancel)

		assertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func newPendingExpense(t *testing.T) *finance.Expense {
	t.Helper()
	e, err := finance.NewExpense(finance.ExpenseInput{
		Category:    finance.CategoryRent,
		Amount:      decimal.NewFromInt(45000),
		Description: "March rent",
		ExpenseDate: testutil.NewTestTime(),
		SubmittedBy: teacherActor.UserID,
	})
	require.NoError(t, err)
	e.ClearDomainEvents()
	return e
}

func TestExpenseHandler_Reject(t *testing.T) {
	const route = "/expenses/:id/reject"

	t.Run("reason is required", func(t *testing.T) {
		expenses := new(testutil.MockExpenseRepository)
		h := NewExpenseHandler(financeapp.NewExpenseService(expenses, zap.NewNop()))
		e := newPendingExpense(t)

		w := perform(t, &adminActor, "POST", route, "/expenses/"+e.ID.String()+"/reject",
			map[string]any{}, h.Reject)

		resp := assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "reason", resp.Error.Details[0].Field)
		expenses.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("admin rejects a pending expense", func(t *testing.T) {
		expenses := new(testutil.MockExpenseRepository)
		h := NewExpenseHandler(financeapp.NewExpenseService(expenses, zap.NewNop()))
		e := newPendingExpense(t)
		expenses.On("FindByID", mock.Anything, e.ID).Return(e, nil)
		expenses.On("Update", mock.Anything, e).Return(nil)

		w := perform(t, &adminActor, "POST", route, "/expenses/"+e.ID.String()+"/reject",
			RejectExpenseRequest{Reason: "Not a business expense"}, h.Reject)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := dataMap(t, decodeResponse(t, w))
		assert.Equal(t, "rejected", data["status"])
		assert.Equal(t, "Not a business expense", data["rejectionReason"])
		expenses.AssertExpectations(t)
	})

	t.Run("already rejected", func(t *testing.T) {
		expenses := new(testutil.MockExpenseRepository)
		h := NewExpenseHandler(financeapp.NewExpenseService(expenses, zap.NewNop()))
		e := newPendingExpense(t)
		require.NoError(t, e.Reject(adminActor.UserID, "first"))
		expenses.On("FindByID", mock.Anything, e.ID).Return(e, nil)

		w := perform(t, &adminActor, "POST", route, "/expenses/"+e.ID.String()+"/reject",
			RejectExpenseRequest{Reason: "again"}, h.Reject)

		assertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	})

	t.Run("teachers cannot reject", func(t *testing.T) {
		expenses := new(testutil.MockExpenseRepository)
		h := NewExpenseHandler(financeapp.NewExpenseService(expenses, zap.NewNop()))
		e := newPendingExpense(t)

		w := perform(t, &teacherActor, "POST", route, "/expenses/"+e.ID.String()+"/reject",
			RejectExpenseRequest{Reason: "mine"}, h.Reject)

		assertErrorCode(t, w, http.StatusForbidden, dto.ErrCodeForbidden)
	})
}

func TestExpenseHandler_Create_InvalidCategory(t *testing.T) {
	expenses := new(testutil.MockExpenseRepository)
	h := NewExpenseHandler(financeapp.NewExpenseService(expenses, zap.NewNop()))

	w := perform(t, &teacherActor, "POST", "/expenses", "/expenses", map[string]any{
		"category":    "yachts",
		"amount":      "100",
		"expenseDate": "2024-03-10",
	}, h.Create)

	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	expenses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
