package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorcenter/backend/internal/domain/academic"
)

// StudentModel is the persistence model for the Student domain entity.
type StudentModel struct {
	AggregateModel
	TeacherID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	FirstName      string                 `gorm:"type:varchar(100);not null"`
	LastName       string                 `gorm:"type:varchar(100);not null"`
	Email          string                 `gorm:"type:varchar(200)"`
	Phone          string                 `gorm:"type:varchar(50)"`
	Level          string                 `gorm:"type:varchar(50)"`
	Status         academic.StudentStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	CurrentBalance decimal.Decimal        `gorm:"type:decimal(14,2);not null;default:0"`
	TotalPaid      decimal.Decimal        `gorm:"type:decimal(14,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student entity.
func (m *StudentModel) ToDomain() *academic.Student {
	return &academic.Student{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TeacherID:         m.TeacherID,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Email:             m.Email,
		Phone:             m.Phone,
		Level:             m.Level,
		Status:            m.Status,
		CurrentBalance:    m.CurrentBalance,
		TotalPaid:         m.TotalPaid,
	}
}

// FromDomain populates the persistence model from a domain Student entity.
func (m *StudentModel) FromDomain(s *academic.Student) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.TeacherID = s.TeacherID
	m.FirstName = s.FirstName
	m.LastName = s.LastName
	m.Email = s.Email
	m.Phone = s.Phone
	m.Level = s.Level
	m.Status = s.Status
	m.CurrentBalance = s.CurrentBalance
	m.TotalPaid = s.TotalPaid
}

// StudentModelFromDomain creates a new persistence model from a domain Student entity.
func StudentModelFromDomain(s *academic.Student) *StudentModel {
	m := &StudentModel{}
	m.FromDomain(s)
	return m
}

// LessonTypeModel is the persistence model for the LessonType domain entity.
// NameKey holds the lowercased name for the per-teacher unique index.
type LessonTypeModel struct {
	AggregateModel
	TeacherID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_lesson_type_teacher_name,priority:1"`
	Name        string          `gorm:"type:varchar(100);not null"`
	NameKey     string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_lesson_type_teacher_name,priority:2"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'DZD'"`
	Description string          `gorm:"type:text"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LessonTypeModel) TableName() string {
	return "lesson_types"
}

// ToDomain converts the persistence model to a domain LessonType entity.
func (m *LessonTypeModel) ToDomain() *academic.LessonType {
	return &academic.LessonType{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TeacherID:         m.TeacherID,
		Name:              m.Name,
		HourlyRate:        m.HourlyRate,
		Currency:          m.Currency,
		Description:       m.Description,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain LessonType entity.
func (m *LessonTypeModel) FromDomain(lt *academic.LessonType) {
	m.FromDomainAggregateRoot(lt.BaseAggregateRoot)
	m.TeacherID = lt.TeacherID
	m.Name = lt.Name
	m.NameKey = lt.NormalizedName()
	m.HourlyRate = lt.HourlyRate
	m.Currency = lt.Currency
	m.Description = lt.Description
	m.IsActive = lt.IsActive
}

// LessonTypeModelFromDomain creates a new persistence model from a domain LessonType entity.
func LessonTypeModelFromDomain(lt *academic.LessonType) *LessonTypeModel {
	m := &LessonTypeModel{}
	m.FromDomain(lt)
	return m
}

// TimeEntryModel is the persistence model for the TimeEntry domain entity.
type TimeEntryModel struct {
	AggregateModel
	TeacherID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_time_entry_teacher_date,priority:1"`
	LessonTypeID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	StudentID       *uuid.UUID      `gorm:"type:uuid;index"`
	Date            time.Time       `gorm:"not null;index:idx_time_entry_teacher_date,priority:2"`
	Hours           decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	HourlyRate      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'DZD'"`
	Description     string          `gorm:"type:text"`
	EditHistoryJSON string          `gorm:"column:edit_history;type:jsonb"`
}

// TableName returns the table name for GORM
func (TimeEntryModel) TableName() string {
	return "time_entries"
}

// ToDomain converts the persistence model to a domain TimeEntry entity.
func (m *TimeEntryModel) ToDomain() *academic.TimeEntry {
	e := &academic.TimeEntry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TeacherID:         m.TeacherID,
		LessonTypeID:      m.LessonTypeID,
		StudentID:         m.StudentID,
		Date:              m.Date,
		Hours:             m.Hours,
		HourlyRate:        m.HourlyRate,
		TotalAmount:       m.TotalAmount,
		Currency:          m.Currency,
		Description:       m.Description,
		EditHistory:       make([]academic.TimeEntryEdit, 0),
	}
	unmarshalJSON(m.EditHistoryJSON, &e.EditHistory, "time_entries.edit_history")
	return e
}

// FromDomain populates the persistence model from a domain TimeEntry entity.
// The total is recomputed from hours and rate before it is written.
func (m *TimeEntryModel) FromDomain(e *academic.TimeEntry) {
	e.Recompute()
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.TeacherID = e.TeacherID
	m.LessonTypeID = e.LessonTypeID
	m.StudentID = e.StudentID
	m.Date = e.Date
	m.Hours = e.Hours
	m.HourlyRate = e.HourlyRate
	m.TotalAmount = e.TotalAmount
	m.Currency = e.Currency
	m.Description = e.Description
	history := e.EditHistory
	if history == nil {
		history = []academic.TimeEntryEdit{}
	}
	m.EditHistoryJSON = marshalJSON(history, "[]")
}

// TimeEntryModelFromDomain creates a new persistence model from a domain TimeEntry entity.
func TimeEntryModelFromDomain(e *academic.TimeEntry) *TimeEntryModel {
	m := &TimeEntryModel{}
	m.FromDomain(e)
	return m
}

// AttendanceModel is the persistence model for the Attendance domain entity.
type AttendanceModel struct {
	BaseModel
	StudentID         uuid.UUID                 `gorm:"type:uuid;not null;index"`
	TeacherID         uuid.UUID                 `gorm:"type:uuid;not null;index"`
	TimeEntryID       *uuid.UUID                `gorm:"type:uuid;index"`
	Date              time.Time                 `gorm:"not null;index"`
	Status            academic.AttendanceStatus `gorm:"type:varchar(20);not null;index"`
	DurationMinutes   int                       `gorm:"not null"`
	LateMinutes       int                       `gorm:"not null;default:0"`
	MakeupCompleted   bool                      `gorm:"not null;default:false"`
	MakeupCompletedAt *time.Time
	Notes             string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AttendanceModel) TableName() string {
	return "attendance"
}

// ToDomain converts the persistence model to a domain Attendance entity.
func (m *AttendanceModel) ToDomain() *academic.Attendance {
	return &academic.Attendance{
		BaseEntity:        m.BaseModel.ToDomain(),
		StudentID:         m.StudentID,
		TeacherID:         m.TeacherID,
		TimeEntryID:       m.TimeEntryID,
		Date:              m.Date,
		Status:            m.Status,
		DurationMinutes:   m.DurationMinutes,
		LateMinutes:       m.LateMinutes,
		MakeupCompleted:   m.MakeupCompleted,
		MakeupCompletedAt: m.MakeupCompletedAt,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Attendance entity.
func (m *AttendanceModel) FromDomain(a *academic.Attendance) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.StudentID = a.StudentID
	m.TeacherID = a.TeacherID
	m.TimeEntryID = a.TimeEntryID
	m.Date = a.Date
	m.Status = a.Status
	m.DurationMinutes = a.DurationMinutes
	m.LateMinutes = a.LateMinutes
	m.MakeupCompleted = a.MakeupCompleted
	m.MakeupCompletedAt = a.MakeupCompletedAt
	m.Notes = a.Notes
}

// AttendanceModelFromDomain creates a new persistence model from a domain Attendance entity.
func AttendanceModelFromDomain(a *academic.Attendance) *AttendanceModel {
	m := &AttendanceModel{}
	m.FromDomain(a)
	return m
}
