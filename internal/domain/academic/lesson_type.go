package academic

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// LessonType is a teacher's rate card entry (a "class")
type LessonType struct {
	shared.BaseAggregateRoot
	TeacherID   uuid.UUID
	Name        string
	HourlyRate  decimal.Decimal
	Currency    string
	Description string
	IsActive    bool
}

// NewLessonType creates an active lesson type. Name uniqueness per teacher is
// enforced by the service against the repository.
func NewLessonType(teacherID uuid.UUID, name string, hourlyRate decimal.Decimal, currency, description string) (*LessonType, error) {
	if currency == "" {
		currency = shared.DefaultCurrency
	}
	lt := &LessonType{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TeacherID:         teacherID,
		Name:              strings.TrimSpace(name),
		HourlyRate:        hourlyRate,
		Currency:          strings.ToUpper(currency),
		Description:       strings.TrimSpace(description),
		IsActive:          true,
	}
	if err := lt.Validate(); err != nil {
		return nil, err
	}
	return lt, nil
}

// Validate checks the record before it is persisted
func (lt *LessonType) Validate() error {
	v := &shared.ValidationError{}
	if lt.TeacherID == uuid.Nil {
		v.Add("teacherId", "teacherId is required")
	}
	if lt.Name == "" {
		v.Add("name", "name is required")
	} else if len(lt.Name) > 100 {
		v.Add("name", "name cannot exceed 100 characters")
	}
	shared.ValidatePositiveAmount(v, "hourlyRate", lt.HourlyRate)
	if len(lt.Currency) != 3 {
		v.Add("currency", "currency must be a 3-letter code")
	}
	return v.OrNil()
}

// NormalizedName is the key used for case-insensitive uniqueness
func (lt *LessonType) NormalizedName() string {
	return NormalizeLessonTypeName(lt.Name)
}

// NormalizeLessonTypeName lowercases and trims a lesson type name
func NormalizeLessonTypeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Update changes the rate card. Existing time entries keep their rate snapshot.
func (lt *LessonType) Update(name string, hourlyRate decimal.Decimal, description string, active bool) error {
	prev := *lt
	lt.Name = strings.TrimSpace(name)
	lt.HourlyRate = hourlyRate
	lt.Description = strings.TrimSpace(description)
	lt.IsActive = active
	if err := lt.Validate(); err != nil {
		*lt = prev
		return err
	}
	lt.Touch()
	lt.IncrementVersion()
	return nil
}
