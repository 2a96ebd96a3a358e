package academic

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// RecordAttendanceInput carries the fields of an attendance record
type RecordAttendanceInput struct {
	StudentID         uuid.UUID
	TimeEntryID       *uuid.UUID
	Date              time.Time
	Status            academic.AttendanceStatus
	DurationMinutes   int
	LateMinutes       int
	MakeupCompletedAt *time.Time
	Notes             string
}

// AttendanceStatsFilter scopes an attendance summary
type AttendanceStatsFilter struct {
	StudentID *uuid.UUID
	TeacherID *uuid.UUID
	Range     shared.DateRange
}

// RecordAttendance records a student's attendance for a lesson. The record
// belongs to the student's teacher.
func (s *Service) RecordAttendance(ctx context.Context, actor identity.Principal, in RecordAttendanceInput) (*academic.Attendance, error) {
	st, err := s.GetStudent(ctx, actor, in.StudentID)
	if err != nil {
		return nil, err
	}
	if in.TimeEntryID != nil {
		if _, err := s.getTimeEntry(ctx, actor, *in.TimeEntryID); err != nil {
			return nil, err
		}
	}

	status := in.Status
	if status == academic.AttendanceLate {
		status = academic.AttendancePresent
	}
	a, err := academic.NewAttendance(st.ID, st.TeacherID, in.TimeEntryID, in.Date, status, in.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if in.Status == academic.AttendanceLate {
		if err := a.MarkLate(in.LateMinutes); err != nil {
			return nil, err
		}
	}
	if in.MakeupCompletedAt != nil {
		if err := a.CompleteMakeup(*in.MakeupCompletedAt); err != nil {
			return nil, err
		}
	}
	a.SetNotes(in.Notes)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos.Attendance.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AttendanceStats summarizes attendance; teachers only see their own lessons
func (s *Service) AttendanceStats(ctx context.Context, actor identity.Principal, f AttendanceStatsFilter) (academic.AttendanceStats, error) {
	teacherID := f.TeacherID
	if scope := actor.Scope(); scope != nil {
		teacherID = scope
	}
	return s.repos.Attendance.Stats(ctx, academic.AttendanceFilter{
		StudentID: f.StudentID,
		TeacherID: teacherID,
		Range:     f.Range,
	})
}
