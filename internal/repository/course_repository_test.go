package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func expectEventAppend(mock sqlmock.Sqlmock, seq int64) {
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO events")).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(seq))
}

func TestCourseRepositoryCreateAssignsCounterID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE counters SET value = value + 1")).
		WithArgs("courses").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectEventAppend(mock, 3)
	mock.ExpectCommit()

	course := &models.Course{Name: "Algebra", Instructor: "bob", Credits: 3, Fee: 500}
	event, err := repo.Create(context.Background(), course)
	require.NoError(t, err)
	require.Equal(t, int64(1), course.ID)
	require.True(t, course.Active)
	require.Equal(t, models.EventCourseCreated, event.Type)
	require.Equal(t, int64(3), event.Seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositorySetStatusMissingCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET active")).
		WithArgs(int64(42), false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetStatus(context.Background(), 42, false))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryEnrollStudentCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	course := &models.Course{ID: 1, Instructor: "bob", Fee: 500}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectEventAppend(mock, 7)
	mock.ExpectCommit()

	transferCalls := 0
	event, err := repo.EnrollStudent(context.Background(), course, "alice", 500, func(ctx context.Context) error {
		transferCalls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, transferCalls)
	require.Equal(t, models.EventStudentEnrolledInCourse, event.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryEnrollStudentRollsBackOnTransferFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	course := &models.Course{ID: 1, Instructor: "bob", Fee: 500}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	transferErr := errors.New("gateway timeout")
	_, err := repo.EnrollStudent(context.Background(), course, "alice", 500, func(ctx context.Context) error {
		return transferErr
	})
	require.ErrorIs(t, err, transferErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryRosterOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"student_principal", "full_name", "email", "paid_amount", "enrolled_at"}).
		AddRow("alice", "Alice", "alice@example.com", int64(500), now).
		AddRow("dave", "", "", int64(500), now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_enrollments e")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	roster, err := repo.Roster(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, "alice", roster[0].Student)
	require.Equal(t, "dave", roster[1].Student)
	require.Empty(t, roster[1].FullName, "students without a record still appear on the roster")
	require.NoError(t, mock.ExpectationsWereMet())
}
