package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "gymdesk/internal/adapters/email"
	"gymdesk/internal/domain/apperr"
	domain "gymdesk/internal/domain/outbox"
)

// OutboxStore is the persistence the processor needs.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the provider's ID for the delivered action.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxProcessor replays queued side effects with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]ActionExecutor
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStore, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		now:       time.Now,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 25,
	}
}

// WithClock replaces the processor's time source.
func (p *OutboxProcessor) WithClock(now func() time.Time) *OutboxProcessor {
	p.now = now
	return p
}

// ProcessStats summarises one pass over the pending queue.
type ProcessStats struct {
	Delivered int
	Failed    int
	Deferred  int // still inside their backoff window
}

// ProcessPending processes pending outbox entries whose backoff has elapsed.
// PRE: Context is valid
// POST: each due entry has one more attempt recorded
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (ProcessStats, error) {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return ProcessStats{}, fmt.Errorf("list pending outbox entries: %w", err)
	}

	var stats ProcessStats
	for _, entry := range entries {
		if !entry.IsDue(p.now(), p.baseDelay, p.maxDelay) {
			stats.Deferred++
			continue
		}
		delivered, err := p.attempt(ctx, entry)
		if err != nil {
			return stats, err
		}
		if delivered {
			stats.Delivered++
		} else {
			stats.Failed++
		}
	}
	return stats, nil
}

// attempt runs one delivery and saves the outcome. Only a save failure is returned.
func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) (bool, error) {
	entry.MarkAttempt(p.now())

	var externalID string
	var err error
	if executor, ok := p.executors[entry.ActionType]; ok {
		externalID, err = executor.Execute(ctx, entry.Payload)
	} else {
		err = fmt.Errorf("no executor registered for action type: %s", entry.ActionType)
	}

	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "attempt", entry.Attempts, "status", entry.Status, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return err == nil, p.store.Save(ctx, entry)
}

// ProcessSingle manually processes a single outbox entry (for admin retry).
// Backoff is ignored.
// PRE: entryID is non-empty
// POST: Entry is processed, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if !entry.CanRetry() {
		return domain.Entry{}, apperr.Conflict(fmt.Sprintf("outbox entry is %s and cannot be retried", entry.Status))
	}
	if _, err := p.attempt(ctx, entry); err != nil {
		return domain.Entry{}, err
	}
	return p.store.GetByID(ctx, entryID)
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status == domain.StatusDone {
		return apperr.Conflict("delivered entries cannot be abandoned")
	}
	entry.MarkAbandoned()
	return p.store.Save(ctx, entry)
}

// --- Email Executor ---

// EmailPayload is the JSON structure queued for a failed email.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Tag     string `json:"tag,omitempty"`
}

// EmailExecutor re-sends queued emails.
type EmailExecutor struct {
	Sender emailAdapter.Sender
}

// Execute sends an email from the payload.
// PRE: payload is valid JSON matching EmailPayload
// POST: email handed to the sender, returns the provider message ID
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	receipt, err := e.Sender.Send(ctx, emailAdapter.Message{To: p.To, Subject: p.Subject, HTML: p.HTML, Tag: p.Tag})
	if err != nil {
		return "", err
	}
	return receipt.MessageID, nil
}

// --- Background Worker ---

// StartBackgroundWorker starts a background goroutine that periodically processes pending outbox entries.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	runEvery("outbox", interval, stopCh, func(ctx context.Context) error {
		stats, err := processor.ProcessPending(ctx)
		if stats.Delivered+stats.Failed > 0 {
			slog.Info("outbox_pass_complete", "delivered", stats.Delivered, "failed", stats.Failed, "deferred", stats.Deferred)
		}
		return err
	})
}

func runEvery(name string, interval time.Duration, stopCh <-chan struct{}, fn func(ctx context.Context) error) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if err := fn(ctx); err != nil {
					slog.Error("background_worker_failed", "worker", name, "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("background_worker_stopped", "worker", name)
				return
			}
		}
	}()
}
