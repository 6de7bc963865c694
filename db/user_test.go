package db

import (
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"

	"bitbucket.org/konstbyte/backend/models"
)

func TestInsertUserCommitFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT\s+user`).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`INSERT INTO\s+pivot_role_user`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("server shutdown in progress"))

	_, err := db.InsertUser(&models.InsertUserOpts{
		Email:     "buyer@example.com",
		Password:  "hashed",
		Firstname: "Anna",
		Lastname:  "Lind",
	})
	if err == nil {
		t.Fatal("expected a failed commit to surface as an error")
	}
	if !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected a commit error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertUserDefaultsToClientRole(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT\s+user`).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`INSERT INTO\s+pivot_role_user`).
		WithArgs(7, ConstRoles.Client).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	id, err := db.InsertUser(&models.InsertUserOpts{
		Email:     "buyer@example.com",
		Password:  "hashed",
		Firstname: "Anna",
		Lastname:  "Lind",
	})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected id 7, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
