package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestProcessComposesError(t *testing.T) {
	h := NewHandler()

	te := h.Process(errors.New("insufficient balance: balance 10.00, required 50.00"), &Context{
		UserID:    "user-1",
		Amount:    50,
		Operation: "spend",
	})

	if te.Type != InsufficientBalance {
		t.Fatalf("expected INSUFFICIENT_BALANCE, got %s", te.Type)
	}
	if te.Severity != SeverityMedium {
		t.Fatalf("expected MEDIUM severity, got %s", te.Severity)
	}
	if te.UserMessage.Title != "Số dư không đủ" {
		t.Fatalf("unexpected user message: %+v", te.UserMessage)
	}
	if te.ID == "" || te.Technical.Timestamp.IsZero() {
		t.Fatalf("missing id or timestamp: %+v", te)
	}
	if te.Context == nil || te.Context.UserID != "user-1" {
		t.Fatalf("context not attached: %+v", te.Context)
	}
}

func TestProcessNeverFails(t *testing.T) {
	h := NewHandler()
	te := h.Process(nil, nil)
	if te.Type != Unknown || te.Severity != SeverityHigh {
		t.Fatalf("nil error should classify UNKNOWN/HIGH, got %s/%s", te.Type, te.Severity)
	}
}

func TestProcessCarriesFaultCode(t *testing.T) {
	h := NewHandler()
	te := h.Process(&Fault{Type: ServiceUnavailable, Code: "HTTP_503", Message: "upstream down"}, nil)
	if te.Technical.Code != "HTTP_503" {
		t.Fatalf("expected code HTTP_503, got %q", te.Technical.Code)
	}
}

func TestHistoryCappedAtTen(t *testing.T) {
	h := NewHandler()
	ctx := &Context{UserID: "user-1"}

	for i := 0; i < 15; i++ {
		h.Process(fmt.Errorf("failure %d: timeout", i), ctx)
	}

	history := h.History("user-1")
	if len(history) != 10 {
		t.Fatalf("expected history capped at 10, got %d", len(history))
	}
	// oldest entries evicted: the first surviving entry is failure 5
	if history[0].Technical.Message != "failure 5: timeout" {
		t.Fatalf("unexpected oldest entry: %s", history[0].Technical.Message)
	}
	if history[9].Technical.Message != "failure 14: timeout" {
		t.Fatalf("unexpected newest entry: %s", history[9].Technical.Message)
	}
}

func TestHistoryIsolatedPerUser(t *testing.T) {
	h := NewHandler()
	h.Process(errors.New("timeout"), &Context{UserID: "a"})
	h.Process(errors.New("timeout"), &Context{UserID: "b"})

	if len(h.History("a")) != 1 || len(h.History("b")) != 1 {
		t.Fatalf("history leaked across users")
	}

	h.ClearHistory("a")
	if len(h.History("a")) != 0 {
		t.Fatalf("clear history failed")
	}
	if len(h.History("b")) != 1 {
		t.Fatalf("clear history removed the wrong user")
	}
}

func TestNoHistoryWithoutUserID(t *testing.T) {
	h := NewHandler()
	h.Process(errors.New("timeout"), &Context{Operation: "spend"})
	h.Process(errors.New("timeout"), nil)
	if len(h.History("")) != 0 {
		t.Fatalf("anonymous failures must not be recorded")
	}
}
