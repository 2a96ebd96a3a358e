package academic

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// StudentFilter narrows student listings
type StudentFilter struct {
	shared.Filter
	TeacherID *uuid.UUID
	Status    *StudentStatus
}

// StudentRepository defines the interface for student persistence
type StudentRepository interface {
	Create(ctx context.Context, student *Student) error
	Update(ctx context.Context, student *Student) error
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)
	FindAll(ctx context.Context, filter StudentFilter) ([]*Student, int64, error)

	// FindActive returns active students, optionally for one teacher
	FindActive(ctx context.Context, teacherID *uuid.UUID) ([]*Student, error)

	// CountByStatus counts students per enrollment status
	CountByStatus(ctx context.Context, teacherID *uuid.UUID) (map[StudentStatus]int64, error)

	// AdjustBalance atomically adds delta to totalPaid and currentBalance,
	// flooring both at zero
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

// LessonTypeRepository defines the interface for lesson type persistence
type LessonTypeRepository interface {
	Create(ctx context.Context, lessonType *LessonType) error
	Update(ctx context.Context, lessonType *LessonType) error
	FindByID(ctx context.Context, id uuid.UUID) (*LessonType, error)
	FindByTeacher(ctx context.Context, teacherID uuid.UUID, activeOnly bool) ([]*LessonType, error)

	// ExistsByName checks the case-insensitive name for one teacher, ignoring excludeID
	ExistsByName(ctx context.Context, teacherID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
}

// TimeEntryFilter scopes time entry queries. Zero-valued fields do not filter.
type TimeEntryFilter struct {
	shared.Filter
	TeacherID    *uuid.UUID
	StudentID    *uuid.UUID
	LessonTypeID *uuid.UUID
	Range        shared.DateRange
}

// TimeSummary totals hours and earnings for a set of entries
type TimeSummary struct {
	Hours   decimal.Decimal `json:"totalHours"`
	Amount  decimal.Decimal `json:"totalAmount"`
	Entries int64           `json:"totalEntries"`
}

// StudentTimeSummary is a TimeSummary for one student
type StudentTimeSummary struct {
	StudentID uuid.UUID `json:"studentId"`
	TimeSummary
}

// TimeEntryRepository defines the interface for time entry persistence
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *TimeEntry) error
	Update(ctx context.Context, entry *TimeEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*TimeEntry, error)
	FindAll(ctx context.Context, filter TimeEntryFilter) ([]*TimeEntry, int64, error)

	// Summarize totals hours, amounts and entry count
	Summarize(ctx context.Context, filter TimeEntryFilter) (TimeSummary, error)

	// SummarizeByStudent groups the totals by student, skipping entries without one
	SummarizeByStudent(ctx context.Context, filter TimeEntryFilter) ([]StudentTimeSummary, error)

	// SumByPeriod buckets entry amounts by period key
	SumByPeriod(ctx context.Context, filter TimeEntryFilter, period shared.Period) ([]shared.PeriodTotal, error)
}

// AttendanceFilter scopes attendance queries
type AttendanceFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	TeacherID *uuid.UUID
	Status    *AttendanceStatus
	Range     shared.DateRange
}

// AttendanceRepository defines the interface for attendance persistence
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *Attendance) error
	Update(ctx context.Context, attendance *Attendance) error
	FindByID(ctx context.Context, id uuid.UUID) (*Attendance, error)
	FindAll(ctx context.Context, filter AttendanceFilter) ([]*Attendance, int64, error)

	// Stats counts records per status and derives the attendance rate
	Stats(ctx context.Context, filter AttendanceFilter) (AttendanceStats, error)
}
