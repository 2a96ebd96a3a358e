package academic

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLessonType(t *testing.T, rate string) *LessonType {
	t.Helper()
	lt, err := NewLessonType(uuid.New(), "Math", dec(rate), "", "")
	require.NoError(t, err)
	return lt
}

func TestNewStudent(t *testing.T) {
	t.Run("creates active student with zero balances", func(t *testing.T) {
		s, err := NewStudent(uuid.New(), " Sara ", "Haddad", "Sara@Example.com", "", "B1")

		require.NoError(t, err)
		assert.Equal(t, StudentActive, s.Status)
		assert.Equal(t, "Sara Haddad", s.FullName())
		assert.Equal(t, "sara@example.com", s.Email)
		assert.True(t, s.TotalPaid.IsZero())
	})

	t.Run("requires owner and names", func(t *testing.T) {
		_, err := NewStudent(uuid.Nil, "", "", "", "", "")

		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 3)
	})
}

func TestStudent_ChangeStatus(t *testing.T) {
	s, err := NewStudent(uuid.New(), "A", "B", "", "", "")
	require.NoError(t, err)

	require.NoError(t, s.ChangeStatus(StudentSuspended, uuid.New()))
	assert.False(t, s.IsActive())
	assert.Len(t, s.GetDomainEvents(), 1)

	assert.Error(t, s.ChangeStatus(StudentStatus("graduated"), uuid.New()))
}

func TestNewLessonType(t *testing.T) {
	lt := newLessonType(t, "1000")
	assert.Equal(t, "DZD", lt.Currency)
	assert.Equal(t, "math", lt.NormalizedName())

	_, err := NewLessonType(uuid.New(), "Physics", dec("10.005"), "EUR", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 2 decimal places")
}

func TestNewTimeEntry_ComputesTotal(t *testing.T) {
	lt := newLessonType(t, "1000")

	entry, err := NewTimeEntry(lt.TeacherID, lt, nil, time.Now().AddDate(0, 0, -1), dec("2.5"), "algebra")

	require.NoError(t, err)
	assert.Equal(t, "2500.00", entry.TotalAmount.StringFixed(2))
	assert.True(t, entry.HourlyRate.Equal(dec("1000")))
	assert.Equal(t, "DZD", entry.Currency)
}

func TestTimeEntry_Validation(t *testing.T) {
	lt := newLessonType(t, "800")
	yesterday := time.Now().AddDate(0, 0, -1)

	tests := []struct {
		name  string
		hours string
		date  time.Time
		msg   string
	}{
		{"zero hours", "0", yesterday, "greater than 0"},
		{"not a quarter hour", "1.1", yesterday, "0.25 increments"},
		{"over a day", "24.25", yesterday, "cannot exceed 24"},
		{"future date", "1", time.Now().AddDate(0, 0, 2), "future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeEntry(lt.TeacherID, lt, nil, tt.date, dec(tt.hours), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	t.Run("inactive lesson type", func(t *testing.T) {
		inactive := newLessonType(t, "800")
		inactive.IsActive = false
		_, err := NewTimeEntry(inactive.TeacherID, inactive, nil, yesterday, dec("1"), "")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestTimeEntry_RecomputeIgnoresTamperedTotal(t *testing.T) {
	lt := newLessonType(t, "1000")
	entry, err := NewTimeEntry(lt.TeacherID, lt, nil, time.Now(), dec("1"), "")
	require.NoError(t, err)

	entry.TotalAmount = dec("1")
	require.NoError(t, entry.Validate(time.Now()))

	assert.True(t, entry.TotalAmount.Equal(dec("1000")))
}

func TestTimeEntry_Edit(t *testing.T) {
	lt := newLessonType(t, "1000")
	entry, err := NewTimeEntry(lt.TeacherID, lt, nil, time.Now().AddDate(0, 0, -1), dec("1"), "")
	require.NoError(t, err)

	t.Run("owner edits within window", func(t *testing.T) {
		err := entry.Edit(dec("1.5"), "longer", lt.TeacherID, false, "miscounted", entry.CreatedAt.Add(time.Hour))

		require.NoError(t, err)
		assert.True(t, entry.TotalAmount.Equal(dec("1500")))
		require.Len(t, entry.EditHistory, 1)
		assert.True(t, entry.EditHistory[0].PreviousHours.Equal(dec("1")))
		assert.True(t, entry.EditHistory[0].PreviousAmount.Equal(dec("1000")))
	})

	t.Run("owner blocked after window", func(t *testing.T) {
		err := entry.Edit(dec("2"), "", lt.TeacherID, false, "", entry.CreatedAt.Add(5*time.Hour))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "within 4 hours")
		assert.True(t, entry.Hours.Equal(dec("1.5")))
	})

	t.Run("admin bypasses window", func(t *testing.T) {
		err := entry.Edit(dec("2"), "", uuid.New(), true, "", entry.CreatedAt.Add(48*time.Hour))

		require.NoError(t, err)
		assert.True(t, entry.TotalAmount.Equal(dec("2000")))
		assert.Len(t, entry.EditHistory, 2)
	})

	t.Run("other teacher forbidden", func(t *testing.T) {
		err := entry.Edit(dec("2"), "", uuid.New(), false, "", entry.CreatedAt)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("invalid edit leaves entry unchanged", func(t *testing.T) {
		err := entry.Edit(dec("0.3"), "", lt.TeacherID, true, "", entry.CreatedAt)

		require.Error(t, err)
		assert.True(t, entry.Hours.Equal(dec("2")))
		assert.True(t, entry.TotalAmount.Equal(dec("2000")))
		assert.Len(t, entry.EditHistory, 2)
	})
}

func TestAttendance_Validation(t *testing.T) {
	student, teacher := uuid.New(), uuid.New()
	now := time.Now()

	t.Run("valid present", func(t *testing.T) {
		_, err := NewAttendance(student, teacher, nil, now, AttendancePresent, 60)
		assert.NoError(t, err)
	})

	t.Run("duration must be 15-minute steps", func(t *testing.T) {
		_, err := NewAttendance(student, teacher, nil, now, AttendancePresent, 50)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "15-minute")
	})

	t.Run("late requires late minutes", func(t *testing.T) {
		_, err := NewAttendance(student, teacher, nil, now, AttendanceLate, 60)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lateMinutes")

		a, err := NewAttendance(student, teacher, nil, now, AttendancePresent, 60)
		require.NoError(t, err)
		assert.NoError(t, a.MarkLate(10))
	})

	t.Run("completed makeup records its time", func(t *testing.T) {
		a, err := NewAttendance(student, teacher, nil, now, AttendanceMakeup, 45)
		require.NoError(t, err)
		require.NoError(t, a.CompleteMakeup(now))
		assert.NotNil(t, a.MakeupCompletedAt)

		a.MakeupCompletedAt = nil
		assert.Error(t, a.Validate())
	})
}

func TestNewAttendanceStats(t *testing.T) {
	stats := NewAttendanceStats(map[AttendanceStatus]int64{
		AttendancePresent: 5,
		AttendanceLate:    1,
		AttendanceAbsent:  2,
		AttendanceMakeup:  1,
	})

	assert.EqualValues(t, 9, stats.Total)
	assert.Equal(t, "66.67", stats.AttendanceRate.StringFixed(2))

	empty := NewAttendanceStats(nil)
	assert.Zero(t, empty.Total)
	assert.True(t, empty.AttendanceRate.IsZero())
}
