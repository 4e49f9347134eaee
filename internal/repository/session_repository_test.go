package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/wwbing/wxorder/internal/model"
)

func newMockSessionRepo(t *testing.T) (*SessionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepo(db), mock
}

// The status flip and the frozen totals travel in one UPDATE.
func TestMarkClosedTxWritesTotalsWithStatus(t *testing.T) {
	repo, mock := newMockSessionRepo(t)
	closedAt := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions SET status").
		WithArgs(model.SessionClosed, closedAt, 2100, 2, 1, model.SessionActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.DB().Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.MarkClosedTx(context.Background(), tx, 1, closedAt, 2100, 2); err != nil {
		t.Fatalf("mark closed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet database expectations: %v", err)
	}
}

// Zero affected rows means the session was not ACTIVE when the UPDATE
// ran; the caller sees ErrSessionNotActive and the row stays untouched.
func TestMarkClosedTxAlreadyClosed(t *testing.T) {
	repo, mock := newMockSessionRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.DB().Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	err = repo.MarkClosedTx(context.Background(), tx, 1, time.Now().UTC(), 0, 0)
	if !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("err = %v, want ErrSessionNotActive", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet database expectations: %v", err)
	}
}
