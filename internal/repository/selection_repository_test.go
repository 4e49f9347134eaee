package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/wwbing/wxorder/internal/model"
)

func newMockSelectionRepo(t *testing.T) (*SelectionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSelectionRepo(db), mock
}

var testItems = []model.SelectionItem{
	{ItemID: 1, Name: "soup", UnitPriceCents: 800, Quantity: 2, LineTotalCents: 1600},
}

// The upsert sources the session id from a guarded SELECT, so a write
// that lands after a concurrent close matches zero source rows and must
// surface as ErrSessionNotActive instead of silently attaching a
// selection to a CLOSED session.
func TestUpsertRefusesClosedSession(t *testing.T) {
	repo, mock := newMockSelectionRepo(t)
	mock.ExpectExec("INSERT INTO selections").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM sessions").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.SessionClosed))

	_, err := repo.Upsert(context.Background(), 1, 42, testItems, 1600, "")
	if !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("err = %v, want ErrSessionNotActive", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet database expectations: %v", err)
	}
}

func TestUpsertDeletedSessionIsNotFound(t *testing.T) {
	repo, mock := newMockSelectionRepo(t)
	mock.ExpectExec("INSERT INTO selections").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM sessions").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	_, err := repo.Upsert(context.Background(), 1, 42, testItems, 1600, "")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestUpsertStoresAndReadsBack(t *testing.T) {
	repo, mock := newMockSelectionRepo(t)
	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO selections").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("FROM selections").WithArgs(1, 42).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "member_id", "items", "subtotal_cents", "note",
			"created_at", "updated_at",
		}).AddRow(9, 1, 42,
			`[{"item_id":1,"name":"soup","unit_price_cents":800,"quantity":2,"line_total_cents":1600}]`,
			1600, "no onions", now, now))

	sel, err := repo.Upsert(context.Background(), 1, 42, testItems, 1600, "no onions")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if sel.SubtotalCents != 1600 || len(sel.Items) != 1 || sel.Items[0].Name != "soup" {
		t.Errorf("stored selection = %+v, want soup line with subtotal 1600", sel)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet database expectations: %v", err)
	}
}
