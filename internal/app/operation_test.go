package app

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	op := NewOperation("save", now)

	if _, err := uuid.Parse(op.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", op.ID, err)
	}
	if op.Name != "save" || !op.StartedAt.Equal(now) {
		t.Errorf("op = %+v", op)
	}
	if op.Status != "success" {
		t.Errorf("Status = %q, want success", op.Status)
	}
	if len(op.ShortID()) != 8 {
		t.Errorf("ShortID() = %q, want 8 chars", op.ShortID())
	}

	op.Fail()
	if op.Status != "error" {
		t.Errorf("Status after Fail() = %q, want error", op.Status)
	}

	if other := NewOperation("save", now); other.ID == op.ID {
		t.Error("operations share an ID")
	}
}
