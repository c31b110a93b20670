package reconcile

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/potluck/internal/cache"
	"github.com/five82/potluck/internal/guest"
	"github.com/five82/potluck/internal/metrics"
	"github.com/five82/potluck/internal/remote"
)

const (
	triggerManual   = "manual"
	triggerPoll     = "poll"
	triggerMutation = "mutation"
)

// Options configure an Engine.
type Options struct {
	Logger         *zerolog.Logger // nil disables logging
	Metrics        *metrics.Metrics
	RemoveRollback RollbackPolicy
	// OnTransition observes every mutation state change. It runs on the
	// goroutine that caused the change, outside engine locks.
	OnTransition func(Mutation)
	Now          func() time.Time
}

// Engine keeps a local cache of the shared guest list consistent with the
// remote store. It is the only writer of its cache.
type Engine struct {
	store        remote.Store
	cache        *cache.Store
	log          zerolog.Logger
	metrics      *metrics.Metrics
	rollback     RollbackPolicy
	onTransition func(Mutation)
	now          func() time.Time

	// mu serializes every cache write together with the bookkeeping and
	// validation around it. It is never held across a remote call.
	mu      sync.Mutex
	seq     uint64
	epoch   uint64 // fetches started
	pending map[uint64]*Mutation
	poll    *poller
	closed  bool
}

// New returns an engine over store with an empty cache.
func New(store remote.Store, opts Options) *Engine {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "reconcile").Logger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:        store,
		cache:        &cache.Store{},
		log:          log,
		metrics:      opts.Metrics,
		rollback:     opts.RemoveRollback,
		onTransition: opts.OnTransition,
		now:          now,
		pending:      make(map[uint64]*Mutation),
	}
}

// Snapshot returns a copy of the cache.
func (e *Engine) Snapshot() cache.Snapshot {
	return e.cache.Snapshot()
}

// Pending returns the in-flight mutations in start order.
func (e *Engine) Pending() []Mutation {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Mutation, 0, len(e.pending))
	for _, m := range e.pending {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Mutation) int { return cmp.Compare(a.Seq, b.Seq) })
	return out
}

// IsPending reports whether any unconfirmed mutation targets id.
func (e *Engine) IsPending(id guest.ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, m := range e.pending {
		if m.RecordID == id {
			return true
		}
	}
	return false
}

// Refresh replaces the cache with the store's current records, ordered by
// creation time. Pending optimistic state is overwritten: the server view
// always wins. On failure the cache is left as it was.
func (e *Engine) Refresh(ctx context.Context) error {
	if e.isClosed() {
		return ErrClosed
	}
	return e.refresh(ctx, triggerManual)
}

// CreateRecord validates draft, inserts it into the cache under a temporary
// id and sends it to the store. On success the cache is refreshed so the
// temporary record is replaced by the stored one; on failure the temporary
// record is removed. The temporary id is returned in both cases.
func (e *Engine) CreateRecord(ctx context.Context, draft guest.Draft) (guest.ID, error) {
	d := draft.Normalize()
	if err := d.Validate(); err != nil {
		return "", &ValidationError{Err: err}
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", ErrClosed
	}
	if e.cache.NameTaken(d.Name, "") {
		e.mu.Unlock()
		return "", &ValidationError{Err: guest.ErrNameTaken}
	}
	id := guest.NewTemporaryID()
	e.cache.Insert(d.Guest(id, e.now()))
	m := e.beginLocked(KindCreate, id)
	e.mu.Unlock()
	e.emit(m)

	if err := e.store.Insert(remoteContext(ctx), d); err != nil {
		e.log.Warn().Err(err).Str("id", string(id)).Msg("insert failed, discarding optimistic record")
		e.mu.Lock()
		if !e.closed {
			e.cache.Remove(id)
		}
		done := e.finishLocked(m.Seq, StateDiscarded, err)
		e.mu.Unlock()
		e.emit(done...)
		return id, &RemoteWriteError{Kind: KindCreate, ID: id, Err: err}
	}

	e.markLanded(m.Seq)
	return id, e.refresh(ctx, triggerMutation)
}

// UpdateRecord applies patch to the cached record immediately, sends it to
// the store and then refreshes whether or not the write succeeded. A failed
// write is undone by that refresh, not by a local rollback.
func (e *Engine) UpdateRecord(ctx context.Context, id guest.ID, patch guest.Patch) error {
	p := patch.Normalize()
	if err := p.Validate(); err != nil {
		return &ValidationError{Err: err}
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if err := e.checkTargetLocked(id); err != nil {
		e.mu.Unlock()
		return err
	}
	if p.Name != nil && e.cache.NameTaken(*p.Name, id) {
		e.mu.Unlock()
		return &ValidationError{Err: guest.ErrNameTaken}
	}
	if p.IsEmpty() {
		e.mu.Unlock()
		return nil
	}
	e.cache.Patch(id, p)
	m := e.beginLocked(KindUpdate, id)
	e.mu.Unlock()
	e.emit(m)

	writeErr := e.store.Update(remoteContext(ctx), id, p)
	if writeErr == nil {
		e.markLanded(m.Seq)
	} else {
		e.log.Warn().Err(writeErr).Str("id", string(id)).Msg("update failed, refreshing to server state")
	}

	readErr := e.refresh(ctx, triggerMutation)
	if writeErr != nil {
		e.mu.Lock()
		done := e.finishLocked(m.Seq, StateRolledBack, writeErr)
		e.mu.Unlock()
		e.emit(done...)
		return errors.Join(&RemoteWriteError{Kind: KindUpdate, ID: id, Err: writeErr}, readErr)
	}
	return readErr
}

// RemoveRecord drops the record from the cache immediately and deletes it
// from the store. If the delete fails the cache is rolled back according to
// the engine's RollbackPolicy; with the default policy the whole cache as it
// was when the remove started is restored.
func (e *Engine) RemoveRecord(ctx context.Context, id guest.ID) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if err := e.checkTargetLocked(id); err != nil {
		e.mu.Unlock()
		return err
	}
	before := e.cache.Snapshot()
	removed, pos, _ := e.cache.Remove(id)
	m := e.beginLocked(KindRemove, id)
	e.mu.Unlock()
	e.emit(m)

	if err := e.store.Delete(remoteContext(ctx), id); err != nil {
		e.mu.Lock()
		if !e.closed {
			switch e.rollback {
			case RollbackRecord:
				e.cache.InsertAt(pos, removed)
			default:
				e.cache.Restore(before)
			}
			e.metrics.SetRecords(e.cache.Len())
		}
		done := e.finishLocked(m.Seq, StateRolledBack, err)
		e.mu.Unlock()
		e.emit(done...)
		e.log.Info().Err(err).Str("id", string(id)).Stringer("policy", e.rollback).Msg("delete failed, rolled back")
		return &RemoteWriteError{Kind: KindRemove, ID: id, Err: err}
	}

	e.markLanded(m.Seq)
	return e.refresh(ctx, triggerMutation)
}

// Close stops polling and detaches the engine from its cache. Remote calls
// already in flight run to completion but no longer write to the cache.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopPollingLocked()
}

func (e *Engine) refresh(ctx context.Context, trigger string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.epoch++
	epoch := e.epoch
	e.mu.Unlock()

	start := time.Now()
	records, err := e.store.FetchAll(remoteContext(ctx))
	e.metrics.ObserveRefresh(trigger, time.Since(start), err)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.log.Debug().Str("trigger", trigger).Msg("engine closed, discarding refresh result")
		if err != nil {
			return &RemoteReadError{Err: err}
		}
		return nil
	}
	if err != nil {
		e.cache.RecordFailure(err)
		e.mu.Unlock()
		e.log.Warn().Err(err).Str("trigger", trigger).Msg("refresh failed, keeping cached records")
		return &RemoteReadError{Err: err}
	}
	slices.SortStableFunc(records, func(a, b guest.Guest) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	e.cache.ReplaceAll(records)
	e.metrics.SetRecords(len(records))
	done := e.confirmLocked(epoch)
	e.mu.Unlock()
	e.emit(done...)
	return nil
}

func (e *Engine) checkTargetLocked(id guest.ID) error {
	if _, ok := e.cache.Get(id); !ok {
		return &ValidationError{Err: ErrNotFound}
	}
	if id.IsTemporary() {
		return &ValidationError{Err: ErrUnconfirmed}
	}
	return nil
}

func (e *Engine) beginLocked(kind Kind, id guest.ID) Mutation {
	e.seq++
	m := &Mutation{
		Seq:       e.seq,
		Kind:      kind,
		RecordID:  id,
		State:     StatePending,
		StartedAt: e.now(),
	}
	e.pending[m.Seq] = m
	e.metrics.ObserveMutation(string(kind), string(StatePending))
	e.metrics.SetPending(len(e.pending))
	return *m
}

func (e *Engine) markLanded(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.pending[seq]; ok {
		m.landedEpoch = e.epoch + 1
	}
}

func (e *Engine) finishLocked(seq uint64, state State, err error) []Mutation {
	m, ok := e.pending[seq]
	if !ok {
		return nil
	}
	delete(e.pending, seq)
	m.State = state
	m.Err = err
	m.EndedAt = e.now()
	e.metrics.ObserveMutation(string(m.Kind), string(state))
	e.metrics.SetPending(len(e.pending))
	return []Mutation{*m}
}

// confirmLocked confirms every landed mutation the fetch with epoch could see.
func (e *Engine) confirmLocked(epoch uint64) []Mutation {
	var done []Mutation
	for seq, m := range e.pending {
		if m.landed() && m.landedEpoch <= epoch {
			done = append(done, e.finishLocked(seq, StateConfirmed, nil)...)
		}
	}
	slices.SortFunc(done, func(a, b Mutation) int { return cmp.Compare(a.Seq, b.Seq) })
	return done
}

func (e *Engine) emit(ms ...Mutation) {
	if e.onTransition == nil {
		return
	}
	for _, m := range ms {
		e.onTransition(m)
	}
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// remoteContext detaches remote calls from caller cancellation: once issued,
// a call completes and its result is applied. The adapter bounds its own
// latency.
func remoteContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
