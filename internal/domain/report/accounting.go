package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// StudentAccountingRow is one student's payment position for a range
type StudentAccountingRow struct {
	StudentID         uuid.UUID       `json:"studentId"`
	StudentName       string          `json:"studentName"`
	TeacherID         uuid.UUID       `json:"teacherId"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	TotalPending      decimal.Decimal `json:"totalPending"`
	TotalOverdue      decimal.Decimal `json:"totalOverdue"`
	EstimatedTotalFee decimal.Decimal `json:"estimatedTotalFee"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance"`
	PaymentCount      int             `json:"paymentCount"`
	LastPaymentDate   *time.Time      `json:"lastPaymentDate,omitempty"`
}

// StudentAccountingTotals sums the student rows
type StudentAccountingTotals struct {
	TotalFees      decimal.Decimal `json:"totalFees"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalPending   decimal.Decimal `json:"totalPending"`
	TotalOverdue   decimal.Decimal `json:"totalOverdue"`
	TotalRemaining decimal.Decimal `json:"totalRemaining"`
}

// StudentAccountingData is the student accounting view
type StudentAccountingData struct {
	Students     []StudentAccountingRow  `json:"students"`
	Totals       StudentAccountingTotals `json:"totals"`
	StudentCount int                     `json:"studentCount"`
}

// TeacherAccountingRow is one teacher's earnings position for a range
type TeacherAccountingRow struct {
	TeacherID      uuid.UUID       `json:"teacherId"`
	TeacherName    string          `json:"teacherName"`
	Email          string          `json:"email"`
	TotalHours     decimal.Decimal `json:"totalHours"`
	TotalEntries   int64           `json:"totalEntries"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalPending   decimal.Decimal `json:"totalPending"`
	UnpaidEarnings decimal.Decimal `json:"unpaidEarnings"`
	IsPaidUp       bool            `json:"isPaidUp"`
}

// TeacherAccountingTotals sums the teacher rows
type TeacherAccountingTotals struct {
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	TotalPending  decimal.Decimal `json:"totalPending"`
	TotalUnpaid   decimal.Decimal `json:"totalUnpaid"`
}

// TeacherAccountingData is the teacher accounting view
type TeacherAccountingData struct {
	Teachers     []TeacherAccountingRow  `json:"teachers"`
	Totals       TeacherAccountingTotals `json:"totals"`
	TeacherCount int                     `json:"teacherCount"`
}

// ExpenseLine is an expense as shown in the expenses view
type ExpenseLine struct {
	ID          uuid.UUID       `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Vendor      string          `json:"vendor,omitempty"`
	ExpenseDate time.Time       `json:"expenseDate"`
	Status      string          `json:"status"`
}

// ExpensesData is the general expenses view
type ExpensesData struct {
	Expenses   []ExpenseLine        `json:"expenses"`
	ByCategory []CategoryAmount     `json:"byCategory"`
	ByMonth    []shared.PeriodTotal `json:"byMonth"`
	Total      decimal.Decimal      `json:"totalExpenses"`
	Count      int                  `json:"expenseCount"`
}

// ProfitStatus classifies net income by sign
type ProfitStatus string

const (
	StatusProfit    ProfitStatus = "profit"
	StatusLoss      ProfitStatus = "loss"
	StatusBreakeven ProfitStatus = "breakeven"
)

// ProfitStatusOf returns the status for a net income
func ProfitStatusOf(netIncome decimal.Decimal) ProfitStatus {
	switch netIncome.Sign() {
	case 1:
		return StatusProfit
	case -1:
		return StatusLoss
	}
	return StatusBreakeven
}

// ProfitLossSummary is the profit and loss view
type ProfitLossSummary struct {
	PeriodStart     *time.Time      `json:"periodStart,omitempty"`
	PeriodEnd       *time.Time      `json:"periodEnd,omitempty"`
	Revenue         decimal.Decimal `json:"revenue"`
	PaymentCount    int64           `json:"paymentCount"`
	TeacherPayments decimal.Decimal `json:"teacherPayments"`
	GeneralExpenses decimal.Decimal `json:"generalExpenses"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	NetIncome       decimal.Decimal `json:"netIncome"`
	ProfitMargin    decimal.Decimal `json:"profitMargin"`
	Status          ProfitStatus    `json:"status"`
}

// CashFlowPeriod is one bucket of the cash flow view
type CashFlowPeriod struct {
	Period       string          `json:"period"`
	Inflow       decimal.Decimal `json:"inflow"`
	Outflow      decimal.Decimal `json:"outflow"`
	NetCashFlow  decimal.Decimal `json:"netCashFlow"`
	RunningTotal decimal.Decimal `json:"runningTotal"`
}

// CashFlowData is the cash flow view
type CashFlowData struct {
	Period       shared.Period    `json:"periodType"`
	Periods      []CashFlowPeriod `json:"periods"`
	TotalInflow  decimal.Decimal  `json:"totalInflow"`
	TotalOutflow decimal.Decimal  `json:"totalOutflow"`
	NetCashFlow  decimal.Decimal  `json:"netCashFlow"`
}

// FinancialMetrics is the dashboard summary
type FinancialMetrics struct {
	Revenue            decimal.Decimal  `json:"revenue"`
	Expenses           decimal.Decimal  `json:"expenses"`
	NetIncome          decimal.Decimal  `json:"netIncome"`
	ProfitMargin       decimal.Decimal  `json:"profitMargin"`
	Status             ProfitStatus     `json:"status"`
	StudentCount       int              `json:"studentCount"`
	OutstandingFees    decimal.Decimal  `json:"outstandingFees"`
	OverduePayments    decimal.Decimal  `json:"overduePayments"`
	TeacherCount       int              `json:"teacherCount"`
	UnpaidEarnings     decimal.Decimal  `json:"unpaidTeacherEarnings"`
	TopExpenseCategory string           `json:"topExpenseCategory,omitempty"`
	ExpensesByCategory []CategoryAmount `json:"expensesByCategory"`
	GeneratedAt        time.Time        `json:"generatedAt"`
}
