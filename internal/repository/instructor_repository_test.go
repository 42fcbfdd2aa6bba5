package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

func TestInstructorRepositoryAuthorize(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInstructorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO instructors")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectEventAppend(mock, 1)
	mock.ExpectCommit()

	event, err := repo.Authorize(context.Background(), "bob", "admin")
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Equal(t, models.EventInstructorAuthorized, event.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryAuthorizeIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInstructorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO instructors")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	event, err := repo.Authorize(context.Background(), "bob", "admin")
	require.NoError(t, err)
	require.Nil(t, event, "re-authorizing must not emit an event")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryIsAuthorized(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInstructorRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM instructors")).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM instructors")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	ok, err := repo.IsAuthorized(context.Background(), "bob")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.IsAuthorized(context.Background(), "ghost")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
