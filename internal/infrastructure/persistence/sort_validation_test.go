package persistence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/tutorcenter/backend/internal/infrastructure/persistence/models"
)

func TestValidateSortOrder(t *testing.T) {
	for input, want := range map[string]string{
		"":                         "DESC",
		"asc":                      "ASC",
		"  Asc ":                   "ASC",
		"DESC":                     "DESC",
		"sideways":                 "DESC",
		"ASC; DROP TABLE payments": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "payment_date"},
		{"amount", "amount"},
		{"  receipt_number ", "receipt_number"},
		{"AMOUNT", "payment_date"},
		{"amount desc", "payment_date"},
		{"amount'--", "payment_date"},
		{"password_hash", "payment_date"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateSortField(tt.input, PaymentSortFields, "payment_date"), "input %q", tt.input)
	}
}

// Every allow-listed sort field and every repository default must be a real
// column of the table it sorts
func TestSortFieldsAreColumns(t *testing.T) {
	cache := &sync.Map{}
	tables := []struct {
		model        any
		fields       map[string]bool
		defaultField string
	}{
		{&models.StudentModel{}, StudentSortFields, "last_name"},
		{&models.TimeEntryModel{}, TimeEntrySortFields, "date"},
		{&models.AttendanceModel{}, AttendanceSortFields, "date"},
		{&models.PaymentModel{}, PaymentSortFields, "payment_date"},
		{&models.TeacherPaymentModel{}, TeacherPaymentSortFields, "payment_date"},
		{&models.ExpenseModel{}, ExpenseSortFields, "expense_date"},
		{&models.AuditLogModel{}, AuditLogSortFields, "created_at"},
		{&models.FinancialReportModel{}, FinancialReportSortFields, "generated_at"},
	}

	for _, tt := range tables {
		s, err := schema.Parse(tt.model, cache, schema.NamingStrategy{})
		require.NoError(t, err)
		t.Run(s.Table, func(t *testing.T) {
			assert.NotNil(t, s.LookUpField(tt.defaultField), "default %s", tt.defaultField)
			for field := range tt.fields {
				assert.NotNil(t, s.LookUpField(field), "sort field %s", field)
			}
		})
	}
}
