package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

func newTestStudent(t *testing.T, teacherID uuid.UUID, first, last string) *academic.Student {
	t.Helper()
	s, err := academic.NewStudent(teacherID, first, last, "", "", "")
	require.NoError(t, err)
	return s
}

func TestGormStudentRepository_FindAll(t *testing.T) {
	repo := NewGormStudentRepository(setupTestDB(t))
	ctx := context.Background()
	teacherA, teacherB := uuid.New(), uuid.New()

	for _, s := range []*academic.Student{
		newTestStudent(t, teacherA, "Yacine", "Benali"),
		newTestStudent(t, teacherA, "Sara", "Mansouri"),
		newTestStudent(t, teacherA, "Nour", "Zeroual"),
		newTestStudent(t, teacherB, "Lina", "Benamar"),
	} {
		require.NoError(t, repo.Create(ctx, s))
	}

	t.Run("scopes by teacher with paging", func(t *testing.T) {
		filter := academic.StudentFilter{
			Filter:    shared.Filter{Page: 1, PageSize: 2, OrderBy: "last_name", OrderDir: "asc"},
			TeacherID: &teacherA,
		}
		students, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, students, 2)
		assert.Equal(t, "Benali", students[0].LastName)
		assert.Equal(t, "Mansouri", students[1].LastName)

		filter.Page = 2
		students, _, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, "Zeroual", students[0].LastName)
	})

	t.Run("search matches names case-insensitively", func(t *testing.T) {
		students, total, err := repo.FindAll(ctx, academic.StudentFilter{Filter: shared.Filter{Search: "BENA"}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, students, 2)
	})

	t.Run("unknown sort field falls back", func(t *testing.T) {
		_, total, err := repo.FindAll(ctx, academic.StudentFilter{Filter: shared.Filter{OrderBy: "1; DROP TABLE students"}})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
	})
}

func TestGormStudentRepository_StatusQueries(t *testing.T) {
	repo := NewGormStudentRepository(setupTestDB(t))
	ctx := context.Background()
	teacher := uuid.New()

	active := newTestStudent(t, teacher, "Ali", "Kaci")
	left := newTestStudent(t, teacher, "Meriem", "Saidi")
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, left))

	require.NoError(t, left.ChangeStatus(academic.StudentInactive, teacher))
	require.NoError(t, repo.Update(ctx, left))

	found, err := repo.FindActive(ctx, &teacher)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, active.ID, found[0].ID)

	counts, err := repo.CountByStatus(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[academic.StudentActive])
	assert.Equal(t, int64(1), counts[academic.StudentInactive])
	assert.Zero(t, counts[academic.StudentSuspended])
}

func TestGormStudentRepository_AdjustBalance(t *testing.T) {
	repo := NewGormStudentRepository(setupTestDB(t))
	ctx := context.Background()

	s := newTestStudent(t, uuid.New(), "Rania", "Hamdi")
	require.NoError(t, repo.Create(ctx, s))

	balances := func() (string, string, int) {
		got, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		return got.TotalPaid.StringFixed(2), got.CurrentBalance.StringFixed(2), got.Version
	}

	t.Run("credit and debit", func(t *testing.T) {
		require.NoError(t, repo.AdjustBalance(ctx, s.ID, dec("1500.50")))
		require.NoError(t, repo.AdjustBalance(ctx, s.ID, dec("-500.25")))
		paid, balance, version := balances()
		assert.Equal(t, "1000.25", paid)
		assert.Equal(t, "1000.25", balance)
		assert.Equal(t, 3, version)
	})

	t.Run("status update keeps balances", func(t *testing.T) {
		require.NoError(t, s.ChangeStatus(academic.StudentInactive, uuid.New()))
		require.NoError(t, repo.Update(ctx, s))
		paid, balance, _ := balances()
		assert.Equal(t, "1000.25", paid)
		assert.Equal(t, "1000.25", balance)
	})

	t.Run("floors at zero", func(t *testing.T) {
		require.NoError(t, repo.AdjustBalance(ctx, s.ID, dec("-5000")))
		paid, balance, _ := balances()
		assert.Equal(t, "0.00", paid)
		assert.Equal(t, "0.00", balance)
	})

	t.Run("unknown student", func(t *testing.T) {
		assert.ErrorIs(t, repo.AdjustBalance(ctx, uuid.New(), dec("10")), shared.ErrNotFound)
	})
}

func TestGormLessonTypeRepository(t *testing.T) {
	repo := NewGormLessonTypeRepository(setupTestDB(t))
	ctx := context.Background()
	teacher := uuid.New()

	math := newTestLessonType(t, teacher, "Mathematics", "2000")
	physics := newTestLessonType(t, teacher, "Physics", "2500")
	require.NoError(t, repo.Create(ctx, physics))
	require.NoError(t, repo.Create(ctx, math))

	t.Run("name check is case-insensitive and per teacher", func(t *testing.T) {
		exists, err := repo.ExistsByName(ctx, teacher, "  MATHEMATICS ", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByName(ctx, teacher, "mathematics", &math.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByName(ctx, uuid.New(), "Mathematics", nil)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate name is rejected by the unique index", func(t *testing.T) {
		dup := newTestLessonType(t, teacher, "mathematics", "1000")
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("lists ordered by name with active filter", func(t *testing.T) {
		require.NoError(t, physics.Update("Physics", physics.HourlyRate, "", false))
		require.NoError(t, repo.Update(ctx, physics))

		all, err := repo.FindByTeacher(ctx, teacher, false)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Mathematics", all[0].Name)

		active, err := repo.FindByTeacher(ctx, teacher, true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, math.ID, active[0].ID)
	})
}

func TestGormTimeEntryRepository_Summaries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTimeEntryRepository(db)
	ctx := context.Background()
	teacher := uuid.New()
	studentA, studentB := uuid.New(), uuid.New()
	lt := newTestLessonType(t, teacher, "Arabic", "1000")

	entries := []struct {
		student *uuid.UUID
		date    time.Time
		hours   string
	}{
		{&studentA, day(2024, time.January, 10), "1.5"},
		{&studentA, day(2024, time.January, 20), "2"},
		{&studentB, day(2024, time.February, 3), "1"},
		{nil, day(2024, time.February, 5), "0.5"},
	}
	for _, e := range entries {
		entry, err := academic.NewTimeEntry(teacher, lt, e.student, e.date, dec(e.hours), "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, entry))
	}

	filter := academic.TimeEntryFilter{TeacherID: &teacher}

	summary, err := repo.Summarize(ctx, filter)
	require.NoError(t, err)
	assert.True(t, dec("5").Equal(summary.Hours), "hours %s", summary.Hours)
	assert.True(t, dec("5000").Equal(summary.Amount), "amount %s", summary.Amount)
	assert.Equal(t, int64(4), summary.Entries)

	byStudent, err := repo.SummarizeByStudent(ctx, filter)
	require.NoError(t, err)
	require.Len(t, byStudent, 2)
	totals := map[uuid.UUID]string{}
	for _, s := range byStudent {
		totals[s.StudentID] = s.Amount.StringFixed(2)
	}
	assert.Equal(t, "3500.00", totals[studentA])
	assert.Equal(t, "1000.00", totals[studentB])

	periods, err := repo.SumByPeriod(ctx, filter, shared.PeriodMonth)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "2024-01", periods[0].Key)
	assert.True(t, dec("3500").Equal(periods[0].Total))
	assert.Equal(t, "2024-02", periods[1].Key)
	assert.Equal(t, int64(2), periods[1].Count)

	february := academic.TimeEntryFilter{
		TeacherID: &teacher,
		Range:     shared.NewDateRange(day(2024, time.February, 1), day(2024, time.February, 29)),
	}
	summary, err = repo.Summarize(ctx, february)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Entries)

	empty, err := repo.Summarize(ctx, academic.TimeEntryFilter{TeacherID: &studentA})
	require.NoError(t, err)
	assert.True(t, empty.Amount.IsZero())
	assert.Zero(t, empty.Entries)
}

func TestGormTimeEntryRepository_Delete(t *testing.T) {
	repo := NewGormTimeEntryRepository(setupTestDB(t))
	ctx := context.Background()
	teacher := uuid.New()

	entry, err := academic.NewTimeEntry(teacher, newTestLessonType(t, teacher, "Chess", "800"), nil, day(2024, time.March, 1), dec("1"), "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, entry))

	require.NoError(t, repo.Delete(ctx, entry.ID))
	_, err = repo.FindByID(ctx, entry.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, entry.ID), shared.ErrNotFound)
}

func TestGormAttendanceRepository_Stats(t *testing.T) {
	repo := NewGormAttendanceRepository(setupTestDB(t))
	ctx := context.Background()
	teacher, student := uuid.New(), uuid.New()

	statuses := []academic.AttendanceStatus{
		academic.AttendancePresent,
		academic.AttendancePresent,
		academic.AttendanceAbsent,
		academic.AttendancePresent,
	}
	for i, status := range statuses {
		a, err := academic.NewAttendance(student, teacher, nil, day(2024, time.April, i+1), status, 60)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, a))
	}
	late, err := academic.NewAttendance(student, teacher, nil, day(2024, time.April, 10), academic.AttendancePresent, 60)
	require.NoError(t, err)
	require.NoError(t, late.MarkLate(10))
	require.NoError(t, repo.Create(ctx, late))

	stats, err := repo.Stats(ctx, academic.AttendanceFilter{StudentID: &student})
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(3), stats.Present)
	assert.Equal(t, int64(1), stats.Absent)
	assert.Equal(t, int64(1), stats.Late)
	assert.Equal(t, "80.00", stats.AttendanceRate.StringFixed(2))

	records, total, err := repo.FindAll(ctx, academic.AttendanceFilter{
		StudentID: &student,
		Range:     shared.NewDateRange(day(2024, time.April, 2), day(2024, time.April, 3)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)

	none, err := repo.Stats(ctx, academic.AttendanceFilter{StudentID: &teacher})
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.True(t, none.AttendanceRate.IsZero())
}
