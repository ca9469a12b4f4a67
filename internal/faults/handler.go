package faults

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const historyLimit = 10

// Handler composes classified failures into TransactionError values and keeps
// a bounded per-user history of recent failures. The history lives in memory
// and is lost on restart.
type Handler struct {
	mu      sync.Mutex
	history map[string][]TransactionError
}

// NewHandler builds an error handler.
func NewHandler() *Handler {
	return &Handler{history: make(map[string][]TransactionError)}
}

// Process classifies err and composes the full structured error. When ctx
// carries a user id, the result is appended to that user's history with the
// oldest entry evicted past the cap. Process never fails; the worst case is
// an Unknown classification.
func (h *Handler) Process(err error, ctx *Context) TransactionError {
	t := Classify(err)

	technical := Technical{Timestamp: time.Now().UTC()}
	if err != nil {
		technical.Message = err.Error()
	}
	var fault *Fault
	if errors.As(err, &fault) {
		technical.Code = fault.Code
	}

	te := TransactionError{
		ID:          "err_" + uuid.NewString(),
		Type:        t,
		Severity:    SeverityFor(t),
		UserMessage: MessageFor(t),
		Technical:   technical,
		Context:     ctx,
	}

	if ctx != nil && ctx.UserID != "" {
		h.mu.Lock()
		entries := append(h.history[ctx.UserID], te)
		if len(entries) > historyLimit {
			entries = entries[len(entries)-historyLimit:]
		}
		h.history[ctx.UserID] = entries
		h.mu.Unlock()
	}

	return te
}

// History returns the user's recent failures, oldest first.
func (h *Handler) History(userID string) []TransactionError {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := h.history[userID]
	out := make([]TransactionError, len(entries))
	copy(out, entries)
	return out
}

// ClearHistory drops the user's failure history.
func (h *Handler) ClearHistory(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.history, userID)
}
