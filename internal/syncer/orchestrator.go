// Package syncer decides, for every new transaction, whether it is mirrored
// right away or queued, and drains the queue in FIFO order when the remote is
// reachable again.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/logging"
	"github.com/MrJamesThe3rd/kasbook/internal/pending"
)

type SubmitStatus string

const (
	StatusMirrored SubmitStatus = "mirrored"
	StatusQueued   SubmitStatus = "queued"
	StatusDeferred SubmitStatus = "deferred"
)

const (
	msgMirrored    = "synced to remote"
	msgOffline     = "saved offline, will sync when online"
	msgBehindQueue = "queued behind pending transactions"
	msgWillRetry   = "sync failed, will retry"
	msgSyncing     = "syncing %d pending transactions"
	msgComplete    = "sync complete"
	msgStopped     = "sync stopped, %d pending transactions will retry"
)

// Result describes what happened to a submitted transaction. Entry is set
// whenever the snapshot was queued.
type Result struct {
	Transaction *ledger.Transaction
	Status      SubmitStatus
	Entry       *pending.Entry
	Message     string
}

type DrainReport struct {
	Mirrored  int
	Remaining int
	Passes    int
	// Coalesced means another drain was already running and will pass again.
	Coalesced bool
}

type Status struct {
	Online         bool
	Draining       bool
	Pending        int
	Message        string
	LastDrainAt    time.Time
	LastDrainError string
}

type Orchestrator struct {
	ledger Ledger
	queue  Queue
	mirror Mirror
	conn   Connectivity
	log    logrus.FieldLogger
	now    func() time.Time

	// submit keeps local insertion order and queue order the same.
	submit sync.Mutex
	// lane serializes every remote write so rows land in submission order.
	lane sync.Mutex

	mu          sync.Mutex
	draining    bool
	again       bool
	message     string
	lastDrainAt time.Time
	lastErr     error

	wg sync.WaitGroup
}

func New(l Ledger, q Queue, m Mirror, c Connectivity, log logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		ledger: l,
		queue:  q,
		mirror: m,
		conn:   c,
		log:    logging.Component(log, "syncer"),
		now:    time.Now,
	}
}

// Submit records the transaction locally and then mirrors or queues it. Remote
// failures never surface here; the only errors are validation and local
// storage failures.
func (o *Orchestrator) Submit(ctx context.Context, params ledger.CreateParams) (*Result, error) {
	o.submit.Lock()
	defer o.submit.Unlock()

	tx, err := o.ledger.AddTransaction(ctx, params)
	if err != nil {
		return nil, err
	}

	if !o.conn.Online() {
		return o.enqueue(ctx, tx, StatusQueued, msgOffline)
	}

	if !o.lane.TryLock() {
		res, err := o.enqueue(ctx, tx, StatusQueued, msgBehindQueue)
		o.TriggerDrain()

		return res, err
	}
	defer o.lane.Unlock()

	log := o.log.WithFields(logrus.Fields{
		logging.FieldTransactionID: tx.ID,
		logging.FieldAccount:       tx.Account,
	})

	empty, err := o.queue.IsEmpty(ctx)
	if err != nil {
		log.WithError(err).Warn("could not check pending queue")
	}

	if err != nil || !empty {
		res, err := o.enqueue(ctx, tx, StatusQueued, msgBehindQueue)
		o.TriggerDrain()

		return res, err
	}

	if err := o.mirror.MirrorTransaction(ctx, tx.Snapshot()); err != nil {
		log.WithError(err).Warn("immediate mirror failed, deferring")
		return o.enqueue(ctx, tx, StatusDeferred, msgWillRetry)
	}

	log.WithField(logging.FieldStatus, StatusMirrored).Info("transaction mirrored")
	o.setMessage(msgMirrored)

	return &Result{Transaction: tx, Status: StatusMirrored, Message: msgMirrored}, nil
}

func (o *Orchestrator) enqueue(ctx context.Context, tx *ledger.Transaction, status SubmitStatus, msg string) (*Result, error) {
	res := &Result{Transaction: tx, Status: status, Message: msg}

	// The transaction is already committed; its snapshot must be queued even
	// if the caller went away.
	e, err := o.queue.Enqueue(context.WithoutCancel(ctx), tx.Snapshot())
	if err != nil {
		return res, fmt.Errorf("queueing transaction %s: %w", tx.ID, err)
	}

	res.Entry = e

	o.log.WithFields(logrus.Fields{
		logging.FieldTransactionID: tx.ID,
		logging.FieldEntryID:       e.ID,
		logging.FieldStatus:        status,
	}).Info("transaction queued")
	o.setMessage(msg)

	return res, nil
}

// Drain mirrors queued entries oldest first and removes each one after the
// remote accepted it. The first failure ends the pass and leaves that entry
// and everything after it queued. If a drain is already running the call only
// asks it to pass once more.
func (o *Orchestrator) Drain(ctx context.Context) (DrainReport, error) {
	o.mu.Lock()
	if o.draining {
		o.again = true
		o.mu.Unlock()

		return DrainReport{Coalesced: true}, nil
	}

	o.draining = true
	o.mu.Unlock()

	o.lane.Lock()
	defer o.lane.Unlock()

	var report DrainReport

	for {
		mirrored, remaining, err := o.pass(ctx)
		report.Mirrored += mirrored
		report.Remaining = remaining
		report.Passes++

		o.mu.Lock()

		if o.again && err == nil {
			o.again = false
			o.mu.Unlock()

			continue
		}

		o.again = false
		o.draining = false
		o.lastDrainAt = o.now()
		o.lastErr = err

		switch {
		case err != nil:
			o.message = fmt.Sprintf(msgStopped, remaining)
		case report.Mirrored > 0:
			o.message = msgComplete
		}

		o.mu.Unlock()

		o.log.WithFields(logrus.Fields{
			logging.FieldCount: report.Mirrored,
			"remaining":        report.Remaining,
			"passes":           report.Passes,
		}).Info("drain finished")

		return report, err
	}
}

func (o *Orchestrator) pass(ctx context.Context) (int, int, error) {
	entries, err := o.queue.ListPending(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("listing pending entries: %w", err)
	}

	if len(entries) == 0 {
		return 0, 0, nil
	}

	o.setMessage(fmt.Sprintf(msgSyncing, len(entries)))

	for i, e := range entries {
		log := o.log.WithFields(logrus.Fields{
			logging.FieldEntryID: e.ID,
			logging.FieldAccount: e.Snapshot.Account,
		})

		if err := o.mirror.MirrorTransaction(ctx, e.Snapshot); err != nil {
			log.WithError(err).Warn("mirroring queued entry failed, stopping drain")
			return i, len(entries) - i, fmt.Errorf("mirroring entry %s: %w", e.ID, err)
		}

		if err := o.queue.Remove(ctx, e.ID); err != nil {
			if errors.Is(err, pending.ErrNotFound) {
				log.Warn("entry removed while it was being mirrored")
				continue
			}

			// The row is on the remote but still queued; it will be mirrored again.
			return i, len(entries) - i, fmt.Errorf("removing entry %s: %w", e.ID, err)
		}
	}

	return len(entries), 0, nil
}

// Remove drops a queued entry without mirroring it. It waits for a running
// pass so the entry is never removed while it is being sent.
func (o *Orchestrator) Remove(ctx context.Context, id uuid.UUID) error {
	o.lane.Lock()
	defer o.lane.Unlock()

	if err := o.queue.Remove(ctx, id); err != nil {
		return fmt.Errorf("removing entry %s: %w", id, err)
	}

	o.log.WithField(logging.FieldEntryID, id).Warn("pending entry removed without mirroring")

	return nil
}

// TriggerDrain starts a drain in the background without waiting for it.
func (o *Orchestrator) TriggerDrain() {
	o.mu.Lock()
	if o.draining {
		o.again = true
		o.mu.Unlock()

		return
	}
	o.mu.Unlock()

	o.wg.Add(1)

	go func() {
		defer o.wg.Done()

		if _, err := o.Drain(context.Background()); err != nil {
			o.log.WithError(err).Warn("background drain stopped")
		}
	}()
}

// Retry drains when online and entries are waiting. It covers failures that
// no connectivity edge will ever clear.
func (o *Orchestrator) Retry() {
	if !o.conn.Online() {
		return
	}

	n, err := o.queue.Count(context.Background())
	if err != nil {
		o.log.WithError(err).Warn("counting pending entries")
		return
	}

	if n > 0 {
		o.TriggerDrain()
	}
}

func (o *Orchestrator) RetryJob() cron.Job {
	return cron.FuncJob(o.Retry)
}

// Wait blocks until background drains started so far have returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) Status(ctx context.Context) (Status, error) {
	n, err := o.queue.Count(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("counting pending entries: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	s := Status{
		Online:      o.conn.Online(),
		Draining:    o.draining,
		Pending:     n,
		Message:     o.message,
		LastDrainAt: o.lastDrainAt,
	}
	if o.lastErr != nil {
		s.LastDrainError = o.lastErr.Error()
	}

	return s, nil
}

func (o *Orchestrator) setMessage(msg string) {
	o.mu.Lock()
	o.message = msg
	o.mu.Unlock()
}
