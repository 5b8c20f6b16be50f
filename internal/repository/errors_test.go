package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestCheckID(t *testing.T) {
	if err := checkID(uuid.NewString()); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	for _, id := range []string{"", "abc", "123e4567-e89b-12d3-a456-42661417400Z"} {
		if err := checkID(id); !errors.Is(err, pgx.ErrNoRows) {
			t.Errorf("checkID(%q) = %v, want pgx.ErrNoRows", id, err)
		}
	}
}

func TestGetByID_MalformedIDSkipsDatabase(t *testing.T) {
	// a nil pool would panic if the query ran
	ctx := context.Background()
	if _, err := NewWorkerRepository(nil).GetByID(ctx, "abc"); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("workers: %v", err)
	}
	if _, err := NewTeamRepository(nil).GetByID(ctx, "abc"); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("teams: %v", err)
	}
	if _, err := NewWorkItemRepository(nil).GetByID(ctx, "abc"); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("items: %v", err)
	}
	if _, err := NewLeaveRepository(nil).GetByID(ctx, "abc"); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("leaves: %v", err)
	}
}

func TestMapWriteError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !errors.Is(mapWriteError(dup), ErrDuplicate) {
		t.Errorf("unique violation not mapped")
	}
	other := errors.New("boom")
	if mapWriteError(other) != other {
		t.Errorf("other errors must pass through")
	}
}

func TestNoTx(t *testing.T) {
	called := false
	err := NoTx{}.WithinTx(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("NoTx: called=%v err=%v", called, err)
	}
}
