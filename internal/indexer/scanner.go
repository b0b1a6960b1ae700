// Package indexer contains the checkpointed tail scanner: the long-lived loop
// that pulls new pool transactions, prices the swaps among them, aggregates
// per-wallet deltas, flushes them to the store, and advances a persisted
// block checkpoint so a restart resumes where the last run left off.
package indexer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Somtiee/swaparc/internal/domain/model"
	"github.com/Somtiee/swaparc/internal/domain/repository"
)

// SwapValuer prices a decoded swap in USD. Total by contract.
type SwapValuer interface {
	ValueUSD(ctx context.Context, swap *model.SwapEvent) float64
}

// DeltaWriter applies one wallet's aggregated delta and returns new totals.
type DeltaWriter interface {
	ApplyDelta(ctx context.Context, wallet string, countDelta int64, volumeDelta float64) (int64, float64, error)
}

// HeightSource reports the current chain height, used only to seed a missing
// checkpoint.
type HeightSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// AggregateObserver is notified after each successful wallet flush.
type AggregateObserver interface {
	BroadcastAggregate(update *model.AggregateUpdate)
}

// Options wires a Scanner. Source, Valuer, Writer and Checkpoints are
// required; everything else is optional and nil-safe.
type Options struct {
	Source      SwapSource
	Valuer      SwapValuer
	Writer      DeltaWriter
	Checkpoints repository.CheckpointStore
	Seen        repository.TxSeenStore
	Archive     repository.SwapArchive
	Publisher   repository.SwapPublisher
	Height      HeightSource
	Observer    AggregateObserver

	// StartBlockOverride skips checkpoint loading and scans from the given
	// block (backfill from genesis uses 0).
	StartBlockOverride *uint64

	Interval     time.Duration
	FlushTimeout time.Duration
	Log          *slog.Logger
}

// Scanner runs the tail-scan state machine.
type Scanner struct {
	opts Options
	log  *slog.Logger

	mu     sync.Mutex
	handle *Handle
}

func NewScanner(opts Options) *Scanner {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = 10 * time.Second
	}
	return &Scanner{opts: opts, log: opts.Log}
}

// Handle represents a started scanner loop.
type Handle struct {
	done chan struct{}
	err  error
}

// Done is closed when the loop has stopped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the loop's exit error after Done is closed.
func (h *Handle) Err() error { return h.err }

// Start launches the scan loop in the background. Starting an already-running
// scanner is a no-op that returns the existing handle.
func (s *Scanner) Start(ctx context.Context) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		s.log.Info("scanner already running")
		return s.handle
	}

	h := &Handle{done: make(chan struct{})}
	s.handle = h
	go func() {
		h.err = s.Run(ctx)
		close(h.done)
	}()
	return h
}

// Run executes scan passes until the context is cancelled. Pass-level errors
// are logged and retried after the fixed sleep interval; only cancellation
// ends the loop.
func (s *Scanner) Run(ctx context.Context) error {
	from := s.loadStartingBlock(ctx)
	s.log.Info("live indexer starting", "fromBlock", from)

	for {
		latest, sawData, err := s.scanPass(ctx, from)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Error("scan pass failed", "fromBlock", from, "err", err)
		} else if sawData && latest >= from {
			next := latest + 1
			if err := s.opts.Checkpoints.SaveCheckpoint(ctx, next); err != nil {
				s.log.Warn("failed to persist checkpoint", "block", next, "err", err)
			}
			from = next
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.Interval):
		}
	}
}

// RunOnce executes a single catch-up pass and persists the checkpoint:
// backfill mode.
func (s *Scanner) RunOnce(ctx context.Context) error {
	from := s.loadStartingBlock(ctx)
	s.log.Info("backfill starting", "fromBlock", from)

	latest, sawData, err := s.scanPass(ctx, from)
	if err != nil {
		return err
	}
	if sawData && latest >= from {
		if err := s.opts.Checkpoints.SaveCheckpoint(ctx, latest+1); err != nil {
			s.log.Warn("failed to persist checkpoint", "block", latest+1, "err", err)
		}
	}
	s.log.Info("backfill complete", "lastBlock", latest)
	return nil
}

// loadStartingBlock resolves the first block of the next pass: the explicit
// override, then the stored checkpoint, then the current chain height (a
// liveness-first policy that skips historical backlog), then 0.
func (s *Scanner) loadStartingBlock(ctx context.Context) uint64 {
	if s.opts.StartBlockOverride != nil {
		return *s.opts.StartBlockOverride
	}

	block, found, err := s.opts.Checkpoints.LoadCheckpoint(ctx)
	if err != nil {
		s.log.Warn("failed to read checkpoint", "err", err)
	} else if found && block > 0 {
		s.log.Info("resuming from stored checkpoint", "block", block)
		return block
	}

	if s.opts.Height != nil {
		latest, err := s.opts.Height.BlockNumber(ctx)
		if err == nil {
			s.log.Info("no stored checkpoint, starting from chain tip", "block", latest)
			if err := s.opts.Checkpoints.SaveCheckpoint(ctx, latest); err != nil {
				s.log.Warn("failed to seed checkpoint", "err", err)
			}
			return latest
		}
		s.log.Warn("failed to get chain height, defaulting to block 0", "err", err)
	}
	return 0
}

// scanPass pages through everything the source has from fromBlock to the
// chain tip, accumulates per-wallet deltas, then flushes once per wallet.
// Returns the highest block seen and whether any page had data; the caller
// advances the checkpoint only on (sawData, no error).
func (s *Scanner) scanPass(ctx context.Context, fromBlock uint64) (maxBlock uint64, sawData bool, err error) {
	start := fromBlock
	deltas := make(map[string]*model.WalletDelta)
	var order []string
	var priced []*model.SwapEvent

	for {
		batch, err := s.opts.Source.NextBatch(ctx, start)
		if err != nil {
			return 0, false, err
		}
		if batch == nil {
			break // caught up to chain tip for now
		}
		sawData = true

		for _, ev := range batch.Events {
			if s.opts.Seen != nil {
				fresh, err := s.opts.Seen.MarkSeen(ctx, ev.TxHash)
				if err != nil {
					s.log.Warn("tx dedup check failed, counting anyway", "tx", ev.TxHash, "err", err)
				} else if !fresh {
					continue // already aggregated in an earlier pass
				}
			}

			ev.USD = s.opts.Valuer.ValueUSD(ctx, ev)

			d := deltas[ev.Trader]
			if d == nil {
				d = &model.WalletDelta{}
				deltas[ev.Trader] = d
				order = append(order, ev.Trader)
			}
			d.Count++
			d.Volume += ev.USD
			priced = append(priced, ev)
		}

		if batch.LastBlock > maxBlock {
			maxBlock = batch.LastBlock
		}
		if batch.LastBlock < start {
			// a malformed page must not stall the loop
			s.log.Warn("page did not advance, abandoning pass", "start", start, "lastBlock", batch.LastBlock)
			break
		}
		start = batch.LastBlock + 1
	}

	if !sawData {
		return fromBlock, false, nil
	}

	s.flush(ctx, order, deltas)
	s.archiveAndPublish(ctx, priced)
	return maxBlock, true, nil
}

// flush writes each wallet's delta once. A failed wallet is logged and
// skipped; it never blocks the others.
func (s *Scanner) flush(ctx context.Context, order []string, deltas map[string]*model.WalletDelta) {
	for _, wallet := range order {
		d := deltas[wallet]

		flushCtx, cancel := context.WithTimeout(ctx, s.opts.FlushTimeout)
		newCount, newVolume, err := s.opts.Writer.ApplyDelta(flushCtx, wallet, d.Count, d.Volume)
		cancel()
		if err != nil {
			s.log.Error("failed to flush wallet delta", "wallet", wallet, "count", d.Count, "volume", d.Volume, "err", err)
			continue
		}

		s.log.Info("flushed wallet delta",
			"wallet", wallet, "swaps", d.Count, "volume", d.Volume,
			"totalCount", newCount, "totalVolume", newVolume)

		if s.opts.Observer != nil {
			s.opts.Observer.BroadcastAggregate(&model.AggregateUpdate{
				Wallet:     wallet,
				SwapCount:  newCount,
				SwapVolume: newVolume,
			})
		}
	}
}

// archiveAndPublish hands the pass's priced events to the optional archive
// and event feed. Failures are logged; the checkpoint still advances.
func (s *Scanner) archiveAndPublish(ctx context.Context, events []*model.SwapEvent) {
	if len(events) == 0 {
		return
	}
	if s.opts.Archive != nil {
		if err := s.opts.Archive.SaveSwaps(ctx, events); err != nil {
			s.log.Warn("failed to archive swap events", "count", len(events), "err", err)
		}
	}
	if s.opts.Publisher != nil {
		if err := s.opts.Publisher.PublishSwaps(ctx, events); err != nil {
			s.log.Warn("failed to publish swap events", "count", len(events), "err", err)
		}
	}
}
