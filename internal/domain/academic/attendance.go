package academic

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// AttendanceStatus is the outcome of a scheduled lesson for one student
type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "present"
	AttendanceAbsent    AttendanceStatus = "absent"
	AttendanceLate      AttendanceStatus = "late"
	AttendanceMakeup    AttendanceStatus = "makeup"
	AttendanceCancelled AttendanceStatus = "cancelled"
)

// IsValid checks if the status is known
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceMakeup, AttendanceCancelled:
		return true
	}
	return false
}

// Attendance records whether a student attended a logged lesson
type Attendance struct {
	shared.BaseEntity
	StudentID         uuid.UUID
	TeacherID         uuid.UUID
	TimeEntryID       *uuid.UUID
	Date              time.Time
	Status            AttendanceStatus
	DurationMinutes   int
	LateMinutes       int
	MakeupCompleted   bool
	MakeupCompletedAt *time.Time
	Notes             string
}

// NewAttendance creates and validates an attendance record
func NewAttendance(studentID, teacherID uuid.UUID, timeEntryID *uuid.UUID, date time.Time, status AttendanceStatus, durationMinutes int) (*Attendance, error) {
	a := &Attendance{
		BaseEntity:      shared.NewBaseEntity(),
		StudentID:       studentID,
		TeacherID:       teacherID,
		TimeEntryID:     timeEntryID,
		Date:            date,
		Status:          status,
		DurationMinutes: durationMinutes,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the per-status rules
func (a *Attendance) Validate() error {
	v := &shared.ValidationError{}
	if a.StudentID == uuid.Nil {
		v.Add("studentId", "studentId is required")
	}
	if a.TeacherID == uuid.Nil {
		v.Add("teacherId", "teacherId is required")
	}
	if a.Date.IsZero() {
		v.Add("date", "date is required")
	}
	if !a.Status.IsValid() {
		v.Add("status", "status must be one of present, absent, late, makeup, cancelled")
	}
	if a.DurationMinutes <= 0 {
		v.Add("durationMinutes", "durationMinutes must be greater than 0")
	} else if a.DurationMinutes%15 != 0 {
		v.Add("durationMinutes", "durationMinutes must be in 15-minute increments")
	}
	if a.LateMinutes < 0 {
		v.Add("lateMinutes", "lateMinutes cannot be negative")
	}
	if a.Status == AttendanceLate && a.LateMinutes <= 0 {
		v.Add("lateMinutes", "lateMinutes must be greater than 0 when status is late")
	}
	if a.MakeupCompleted && a.MakeupCompletedAt == nil {
		v.Add("makeupCompletedAt", "makeupCompletedAt is required when makeup is completed")
	}
	if len(a.Notes) > 1000 {
		v.Add("notes", "notes cannot exceed 1000 characters")
	}
	return v.OrNil()
}

// MarkLate sets the late status with its delay
func (a *Attendance) MarkLate(minutes int) error {
	a.Status = AttendanceLate
	a.LateMinutes = minutes
	return a.Validate()
}

// CompleteMakeup records that a missed lesson was made up
func (a *Attendance) CompleteMakeup(at time.Time) error {
	a.MakeupCompleted = true
	a.MakeupCompletedAt = &at
	a.Touch()
	return a.Validate()
}

// SetNotes replaces the free-text notes
func (a *Attendance) SetNotes(notes string) {
	a.Notes = strings.TrimSpace(notes)
	a.Touch()
}

// AttendanceStats summarizes attendance counts for a filter
type AttendanceStats struct {
	Total          int64           `json:"totalLessons"`
	Present        int64           `json:"present"`
	Absent         int64           `json:"absent"`
	Late           int64           `json:"late"`
	Makeup         int64           `json:"makeup"`
	Cancelled      int64           `json:"cancelled"`
	AttendanceRate decimal.Decimal `json:"attendanceRate"`
}

// NewAttendanceStats builds stats from per-status counts. The rate counts
// late arrivals as attended and is zero when there are no lessons.
func NewAttendanceStats(counts map[AttendanceStatus]int64) AttendanceStats {
	s := AttendanceStats{
		Present:   counts[AttendancePresent],
		Absent:    counts[AttendanceAbsent],
		Late:      counts[AttendanceLate],
		Makeup:    counts[AttendanceMakeup],
		Cancelled: counts[AttendanceCancelled],
	}
	s.Total = s.Present + s.Absent + s.Late + s.Makeup + s.Cancelled
	s.AttendanceRate = shared.Percentage(decimal.NewFromInt(s.Present+s.Late), decimal.NewFromInt(s.Total))
	return s
}
