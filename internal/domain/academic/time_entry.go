package academic

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// AggregateTypeTimeEntry is the aggregate type name used in events and audit rows
const AggregateTypeTimeEntry = "TimeEntry"

// EditWindow is how long after creation a teacher may still edit an entry
const EditWindow = 4 * time.Hour

var (
	maxHours    = decimal.NewFromInt(24)
	quarterHour = decimal.NewFromInt(4)
)

// TimeEntryEdit is one append-only history record of a change to an entry
type TimeEntryEdit struct {
	PreviousHours  decimal.Decimal `json:"previousHours"`
	PreviousAmount decimal.Decimal `json:"previousAmount"`
	EditedAt       time.Time       `json:"editedAt"`
	EditedBy       uuid.UUID       `json:"editedBy"`
	Reason         string          `json:"reason,omitempty"`
}

// TimeEntry is one logged lesson
type TimeEntry struct {
	shared.BaseAggregateRoot
	TeacherID    uuid.UUID
	LessonTypeID uuid.UUID
	StudentID    *uuid.UUID
	Date         time.Time
	Hours        decimal.Decimal
	HourlyRate   decimal.Decimal
	TotalAmount  decimal.Decimal
	Currency     string
	Description  string
	EditHistory  []TimeEntryEdit
}

// NewTimeEntry logs a lesson, snapshotting the lesson type's rate
func NewTimeEntry(teacherID uuid.UUID, lessonType *LessonType, studentID *uuid.UUID, date time.Time, hours decimal.Decimal, description string) (*TimeEntry, error) {
	if lessonType == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "lesson type is required")
	}
	if !lessonType.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "lesson type is inactive")
	}
	e := &TimeEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TeacherID:         teacherID,
		LessonTypeID:      lessonType.ID,
		StudentID:         studentID,
		Date:              date,
		Hours:             hours,
		HourlyRate:        lessonType.HourlyRate,
		Currency:          lessonType.Currency,
		Description:       strings.TrimSpace(description),
		EditHistory:       make([]TimeEntryEdit, 0),
	}
	if err := e.Validate(time.Now()); err != nil {
		return nil, err
	}
	return e, nil
}

// Recompute derives the total from hours and rate. Called on every save path
// so a stored total can never drift from its inputs.
func (e *TimeEntry) Recompute() {
	e.TotalAmount = shared.Round2(e.Hours.Mul(e.HourlyRate))
}

// Validate recomputes the total and checks the record against now
func (e *TimeEntry) Validate(now time.Time) error {
	e.Recompute()
	v := &shared.ValidationError{}
	if e.TeacherID == uuid.Nil {
		v.Add("teacherId", "teacherId is required")
	}
	if e.LessonTypeID == uuid.Nil {
		v.Add("lessonTypeId", "lessonTypeId is required")
	}
	if e.Date.IsZero() {
		v.Add("date", "date is required")
	} else if dayOf(e.Date).After(dayOf(now)) {
		v.Add("date", "date cannot be in the future")
	}
	validateHours(v, e.Hours)
	shared.ValidatePositiveAmount(v, "hourlyRate", e.HourlyRate)
	if e.Currency == "" {
		e.Currency = shared.DefaultCurrency
	}
	return v.OrNil()
}

func validateHours(v *shared.ValidationError, hours decimal.Decimal) {
	if !hours.IsPositive() {
		v.Add("hours", "hours must be greater than 0")
		return
	}
	if hours.GreaterThan(maxHours) {
		v.Add("hours", "hours cannot exceed 24")
	}
	if !hours.Mul(quarterHour).IsInteger() {
		v.Add("hours", "hours must be in 0.25 increments")
	}
}

// CanEdit reports whether the editor may still change the entry at now
func (e *TimeEntry) CanEdit(now time.Time, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	return now.Sub(e.CreatedAt) <= EditWindow
}

// Edit changes hours and description, appending a history record
func (e *TimeEntry) Edit(hours decimal.Decimal, description string, editor uuid.UUID, isAdmin bool, reason string, now time.Time) error {
	if !isAdmin && editor != e.TeacherID {
		return shared.NewDomainError("FORBIDDEN", "Only the owning teacher can edit this entry")
	}
	if !e.CanEdit(now, isAdmin) {
		return shared.NewDomainError("EDIT_WINDOW_EXPIRED", "Time entries can only be edited within 4 hours of creation")
	}

	edit := TimeEntryEdit{
		PreviousHours:  e.Hours,
		PreviousAmount: e.TotalAmount,
		EditedAt:       now,
		EditedBy:       editor,
		Reason:         strings.TrimSpace(reason),
	}
	prevHours, prevDesc := e.Hours, e.Description
	e.Hours = hours
	e.Description = strings.TrimSpace(description)
	if err := e.Validate(now); err != nil {
		e.Hours, e.Description = prevHours, prevDesc
		e.Recompute()
		return err
	}
	e.EditHistory = append(e.EditHistory, edit)
	e.UpdatedAt = now
	e.IncrementVersion()
	return nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
