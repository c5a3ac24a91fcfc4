package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
)

// ErrPollTimeout means the poll budget ran out before the payment reached a
// terminal state. The payment may still complete afterwards, so callers should
// tell the user to check their payment app rather than assert failure.
var ErrPollTimeout = errors.New("payment status polling timed out")

const MsgPollTimeout = "The payment is taking longer than expected, check your payment app"

// StatusWatcher polls a transaction until it reaches a terminal state. It is
// the service-side rendition of the browser poll loop: fixed interval, bounded
// attempts, cancellable through the context, and a guard that keeps a second
// wait from starting while one is in flight.
type StatusWatcher struct {
	transactions domain.TransactionRepository
	logger       *slog.Logger
	interval     time.Duration
	maxAttempts  int
	busy         atomic.Bool
}

func NewStatusWatcher(transactions domain.TransactionRepository, logger *slog.Logger) *StatusWatcher {
	return &StatusWatcher{
		transactions: transactions,
		logger:       logger,
		interval:     2 * time.Second,
		maxAttempts:  45,
	}
}

// WithSchedule overrides the poll interval and attempt budget.
func (w *StatusWatcher) WithSchedule(interval time.Duration, maxAttempts int) *StatusWatcher {
	w.interval = interval
	w.maxAttempts = maxAttempts
	return w
}

// Wait polls until the transaction is terminal, the attempt budget runs out
// (ErrPollTimeout) or the context is cancelled. A transaction that does not
// exist yet counts as pending, not as an error: the gateway may confirm before
// the local record lands.
func (w *StatusWatcher) Wait(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		tx, err := w.transactions.GetByID(ctx, transactionID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		if tx.Status.Terminal() {
			return tx, nil
		}
	}

	return nil, ErrPollTimeout
}

// WaitAndFinalize waits for the payment and, on PAID, invokes the finalizer
// exactly once with the order snapshot recorded on the transaction. The busy
// guard rejects re-entrant invocations while a previous wait is in flight.
func (w *StatusWatcher) WaitAndFinalize(ctx context.Context, transactionID string, finalizer *Finalizer) Result {
	if !w.busy.CompareAndSwap(false, true) {
		return failure("A finalization is already in progress")
	}
	defer w.busy.Store(false)

	tx, err := w.Wait(ctx, transactionID)
	if err != nil {
		if errors.Is(err, ErrPollTimeout) {
			return failure(MsgPollTimeout)
		}
		w.logger.Error("payment watch failed", "transaction", transactionID, "error", err)
		return failure(MsgInternal)
	}

	if tx.Status != domain.TransactionStatusPaid {
		return failure(fmt.Sprintf("Payment request failed with status %s", tx.Status))
	}

	return finalizer.Finalize(ctx, tx.Order, tx.ID)
}
