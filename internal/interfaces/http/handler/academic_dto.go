package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tutorcenter/backend/internal/domain/academic"
)

// StudentResponse is the public view of a student
type StudentResponse struct {
	ID             uuid.UUID       `json:"id"`
	TeacherID      uuid.UUID       `json:"teacherId"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Level          string          `json:"level,omitempty"`
	Status         string          `json:"status" example:"active"`
	CurrentBalance decimal.Decimal `json:"currentBalance" swaggertype:"string" example:"0.00"`
	TotalPaid      decimal.Decimal `json:"totalPaid" swaggertype:"string" example:"0.00"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func toStudentResponse(s *academic.Student) StudentResponse {
	return StudentResponse{
		ID:             s.ID,
		TeacherID:      s.TeacherID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Email:          s.Email,
		Phone:          s.Phone,
		Level:          s.Level,
		Status:         string(s.Status),
		CurrentBalance: s.CurrentBalance,
		TotalPaid:      s.TotalPaid,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// LessonTypeResponse is the public view of a lesson type
type LessonTypeResponse struct {
	ID          uuid.UUID       `json:"id"`
	TeacherID   uuid.UUID       `json:"teacherId"`
	Name        string          `json:"name"`
	HourlyRate  decimal.Decimal `json:"hourlyRate" swaggertype:"string" example:"1200.00"`
	Currency    string          `json:"currency" example:"DZD"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toLessonTypeResponse(lt *academic.LessonType) LessonTypeResponse {
	return LessonTypeResponse{
		ID:          lt.ID,
		TeacherID:   lt.TeacherID,
		Name:        lt.Name,
		HourlyRate:  lt.HourlyRate,
		Currency:    lt.Currency,
		Description: lt.Description,
		IsActive:    lt.IsActive,
		CreatedAt:   lt.CreatedAt,
	}
}

// TimeEntryResponse is the public view of a logged lesson
type TimeEntryResponse struct {
	ID           uuid.UUID               `json:"id"`
	TeacherID    uuid.UUID               `json:"teacherId"`
	LessonTypeID uuid.UUID               `json:"lessonTypeId"`
	StudentID    *uuid.UUID              `json:"studentId,omitempty"`
	Date         string                  `json:"date" example:"2024-03-15"`
	Hours        decimal.Decimal         `json:"hours" swaggertype:"string" example:"1.75"`
	HourlyRate   decimal.Decimal         `json:"hourlyRate" swaggertype:"string" example:"1200.00"`
	TotalAmount  decimal.Decimal         `json:"totalAmount" swaggertype:"string" example:"2100.00"`
	Currency     string                  `json:"currency"`
	Description  string                  `json:"description,omitempty"`
	EditHistory  []academic.TimeEntryEdit `json:"editHistory,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
}

func toTimeEntryResponse(e *academic.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:           e.ID,
		TeacherID:    e.TeacherID,
		LessonTypeID: e.LessonTypeID,
		StudentID:    e.StudentID,
		Date:         e.Date.Format(DateLayout),
		Hours:        e.Hours,
		HourlyRate:   e.HourlyRate,
		TotalAmount:  e.TotalAmount,
		Currency:     e.Currency,
		Description:  e.Description,
		EditHistory:  e.EditHistory,
		CreatedAt:    e.CreatedAt,
	}
}

// TimeEntryListResponse is a page of time entries with totals over the whole filter
type TimeEntryListResponse struct {
	Entries []TimeEntryResponse  `json:"entries"`
	Summary academic.TimeSummary `json:"summary"`
}

// AttendanceResponse is the public view of an attendance record
type AttendanceResponse struct {
	ID                uuid.UUID  `json:"id"`
	StudentID         uuid.UUID  `json:"studentId"`
	TeacherID         uuid.UUID  `json:"teacherId"`
	TimeEntryID       *uuid.UUID `json:"timeEntryId,omitempty"`
	Date              string     `json:"date"`
	Status            string     `json:"status" example:"present"`
	DurationMinutes   int        `json:"durationMinutes"`
	LateMinutes       int        `json:"lateMinutes,omitempty"`
	MakeupCompleted   bool       `json:"makeupCompleted"`
	MakeupCompletedAt *time.Time `json:"makeupCompletedAt,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

func toAttendanceResponse(a *academic.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:                a.ID,
		StudentID:         a.StudentID,
		TeacherID:         a.TeacherID,
		TimeEntryID:       a.TimeEntryID,
		Date:              a.Date.Format(DateLayout),
		Status:            string(a.Status),
		DurationMinutes:   a.DurationMinutes,
		LateMinutes:       a.LateMinutes,
		MakeupCompleted:   a.MakeupCompleted,
		MakeupCompletedAt: a.MakeupCompletedAt,
		Notes:             a.Notes,
	}
}

func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}
