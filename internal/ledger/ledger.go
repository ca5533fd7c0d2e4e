package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/logging"
)

// Vote is one user's current stance on one catalog item.
type Vote struct {
	UserID    string
	ItemID    string
	IsUpvote  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tally is the denormalised pair of counters stored on a catalog item.
type Tally struct {
	Upvotes   int64
	Downvotes int64
}

// apply adds the effect of moving from prev to next. A nil prev means no vote.
func (t Tally) apply(prev *bool, next bool) Tally {
	if prev != nil {
		if *prev {
			t.Upvotes--
		} else {
			t.Downvotes--
		}
	}
	if next {
		t.Upvotes++
	} else {
		t.Downvotes++
	}
	return t
}

func (t Tally) plus(d Tally) Tally {
	return Tally{Upvotes: t.Upvotes + d.Upvotes, Downvotes: t.Downvotes + d.Downvotes}
}

func (t Tally) minus(d Tally) Tally {
	return Tally{Upvotes: t.Upvotes - d.Upvotes, Downvotes: t.Downvotes - d.Downvotes}
}

// Gateway is the slice of the persistence backend the ledger needs.
// FindVote returns common.ErrorNotFound when the user has not voted.
type Gateway interface {
	FindVote(ctx context.Context, userID, itemID string) (*Vote, error)
	InsertVote(ctx context.Context, v *Vote) error
	UpdateVote(ctx context.Context, v *Vote) error
	RecomputeTally(ctx context.Context, itemID string) (Tally, error)
}

// Result describes a successful cast.
type Result struct {
	Tally   Tally
	Flipped bool
	// Reconciled is false when the server recount failed and Tally is still
	// the optimistic value.
	Reconciled bool
}

type voteKey struct {
	userID string
	itemID string
}

// Ledger is safe for concurrent use. At most one cast per (user, item) is
// in flight at a time; a second one is rejected with ErrVoteInProgress.
type Ledger struct {
	gw     Gateway
	logger logging.Logger

	mu       sync.Mutex
	tallies  map[string]Tally
	votes    map[voteKey]bool
	inFlight map[voteKey]struct{}
	// pending holds, per item, the optimistic deltas whose writes have not
	// finished yet. A seeded tally does not include them.
	pending map[string]Tally
}

func New(gw Gateway, logger logging.Logger) *Ledger {
	return &Ledger{
		gw:       gw,
		logger:   logger.With("module", "ledger"),
		tallies:  make(map[string]Tally),
		votes:    make(map[voteKey]bool),
		inFlight: make(map[voteKey]struct{}),
		pending:  make(map[string]Tally),
	}
}

// Seed installs the tally read together with an item, replacing any local
// view. Casts still in flight for the item are layered on top, so a later
// compensation lands back on the seeded value.
func (l *Ledger) Seed(itemID string, t Tally) Tally {
	l.mu.Lock()
	defer l.mu.Unlock()
	t = t.plus(l.pending[itemID])
	l.tallies[itemID] = t
	return t
}

// Tally returns the client-visible tally for itemID.
func (l *Ledger) Tally(itemID string) Tally {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tallies[itemID]
}

// CurrentVote returns the recorded polarity of userID on itemID, if known.
func (l *Ledger) CurrentVote(userID, itemID string) (isUpvote bool, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	isUpvote, ok = l.votes[voteKey{userID, itemID}]
	return isUpvote, ok
}

// Forget drops every recorded vote of userID. Called on sign-out.
func (l *Ledger) Forget(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.votes {
		if k.userID == userID {
			delete(l.votes, k)
		}
	}
}

// CastVote records userID's vote on itemID. itemOwnerID is supplied by the
// caller so self votes are refused without a round trip.
func (l *Ledger) CastVote(ctx context.Context, userID, itemID string, isUpvote bool, itemOwnerID string) (*Result, error) {
	if userID == "" {
		return nil, common.ErrUnauthenticated
	}
	if userID == itemOwnerID {
		return nil, common.ErrSelfVoteForbidden
	}

	key := voteKey{userID, itemID}
	if !l.acquire(key) {
		return nil, common.ErrVoteInProgress
	}
	defer l.release(key)

	existing, err := l.gw.FindVote(ctx, userID, itemID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		l.logger.Error(ctx, "vote lookup failed", "item_id", itemID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrVoteWriteFailed, err)
	}

	var prev *bool
	if existing != nil {
		prev = &existing.IsUpvote
		if existing.IsUpvote == isUpvote {
			l.remember(key, existing.IsUpvote)
			return nil, common.ErrDuplicateVote
		}
	}

	l.applyOptimistic(key, prev, isUpvote)

	vote := &Vote{UserID: userID, ItemID: itemID, IsUpvote: isUpvote, UpdatedAt: time.Now()}
	if existing == nil {
		err = l.gw.InsertVote(ctx, vote)
	} else {
		vote.CreatedAt = existing.CreatedAt
		err = l.gw.UpdateVote(ctx, vote)
	}
	if err != nil {
		l.compensate(key, prev, isUpvote)
		l.logger.Error(ctx, "vote write failed", "item_id", itemID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrVoteWriteFailed, err)
	}
	l.settle(itemID, prev, isUpvote)

	res := &Result{Flipped: existing != nil}
	res.Tally, res.Reconciled = l.reconcile(ctx, itemID)
	return res, nil
}

// Reconcile asks the server to recount itemID and adopts the result.
func (l *Ledger) Reconcile(ctx context.Context, itemID string) (Tally, error) {
	t, err := l.gw.RecomputeTally(ctx, itemID)
	if err != nil {
		return l.Tally(itemID), err
	}
	return l.Seed(itemID, t), nil
}

func (l *Ledger) reconcile(ctx context.Context, itemID string) (Tally, bool) {
	t, err := l.Reconcile(ctx, itemID)
	if err != nil {
		l.logger.Warn(ctx, "tally recount failed, keeping optimistic value", "item_id", itemID, "error", err)
		return t, false
	}
	return t, true
}

func (l *Ledger) acquire(key voteKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.inFlight[key]; busy {
		return false
	}
	l.inFlight[key] = struct{}{}
	return true
}

func (l *Ledger) release(key voteKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, key)
}

func (l *Ledger) remember(key voteKey, isUpvote bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.votes[key] = isUpvote
}

func (l *Ledger) applyOptimistic(key voteKey, prev *bool, next bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d := Tally{}.apply(prev, next)
	l.tallies[key.itemID] = l.tallies[key.itemID].plus(d)
	l.pending[key.itemID] = l.pending[key.itemID].plus(d)
	l.votes[key] = next
}

// compensate is applied as an inverse delta so concurrent casts by other
// users on the same item keep their own adjustments.
func (l *Ledger) compensate(key voteKey, prev *bool, next bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d := Tally{}.apply(prev, next)
	l.tallies[key.itemID] = l.tallies[key.itemID].minus(d)
	l.dropPending(key.itemID, d)
	if prev == nil {
		delete(l.votes, key)
	} else {
		l.votes[key] = *prev
	}
}

// settle marks a cast as stored; from here on the server's counts include it.
func (l *Ledger) settle(itemID string, prev *bool, next bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropPending(itemID, Tally{}.apply(prev, next))
}

func (l *Ledger) dropPending(itemID string, d Tally) {
	p := l.pending[itemID].minus(d)
	if p == (Tally{}) {
		delete(l.pending, itemID)
		return
	}
	l.pending[itemID] = p
}
