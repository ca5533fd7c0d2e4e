// Package provisioner guarantees that every identity which signs in ends up
// with exactly one application profile.
//
// The lookup and the insert are not atomic, so correctness rests on the
// store's unique constraints: a violation on "username" is recovered with a
// single retry under a disambiguated name, and a violation on "id" means a
// concurrent sign-in already created the row.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/logging"
	"github.com/dmitrijs2005/srefhub/internal/server/identity"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

// Store is the profile slice of the persistence gateway.
type Store interface {
	FindProfile(ctx context.Context, id string) (*models.Profile, error)
	CreateProfile(ctx context.Context, p *models.Profile) error
	ListOrphanIdentities(ctx context.Context) ([]*models.Identity, error)
}

// Notifier is the out-of-band channel for provisioning failures. Sign-in
// never fails because of them.
type Notifier interface {
	ProfileCreationFailed(ctx context.Context, identityID string, err error)
}

type Outcome int

const (
	// OutcomeExisting: the profile was already there.
	OutcomeExisting Outcome = iota
	OutcomeCreated
	// OutcomeDisambiguated: created on retry under a suffixed username.
	OutcomeDisambiguated
	// OutcomeRaceLost: another caller inserted the same identity first.
	OutcomeRaceLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExisting:
		return "existing"
	case OutcomeCreated:
		return "created"
	case OutcomeDisambiguated:
		return "disambiguated"
	case OutcomeRaceLost:
		return "race_lost"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Result struct {
	Outcome  Outcome
	Username string
}

type Provisioner struct {
	store    Store
	notifier Notifier
	logger   logging.Logger
	now      func() time.Time
}

func New(store Store, notifier Notifier, logger logging.Logger) *Provisioner {
	return &Provisioner{
		store:    store,
		notifier: notifier,
		logger:   logger.With("module", "provisioner"),
		now:      time.Now,
	}
}

// HandleAuthEvent is subscribed to the identity bus. Only SIGNED_IN events
// trigger provisioning; failures are reported, not returned.
func (p *Provisioner) HandleAuthEvent(ctx context.Context, e identity.Event) {
	if e.Kind != identity.SignedIn {
		return
	}
	res, err := p.EnsureProfile(ctx, e.Identity)
	if err != nil {
		p.logger.Error(ctx, "profile provisioning failed", "identity_id", e.Identity.ID, "error", err)
		if p.notifier != nil {
			p.notifier.ProfileCreationFailed(ctx, e.Identity.ID, err)
		}
		return
	}
	if res.Outcome != OutcomeExisting {
		p.logger.Info(ctx, "profile provisioned", "identity_id", e.Identity.ID, "username", res.Username, "outcome", res.Outcome.String())
	}
}

// EnsureProfile creates the profile for id unless it already exists.
func (p *Provisioner) EnsureProfile(ctx context.Context, id identity.Identity) (*Result, error) {
	existing, err := p.store.FindProfile(ctx, id.ID)
	if err == nil {
		return &Result{Outcome: OutcomeExisting, Username: existing.Username}, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: %w", common.ErrProfileCreationFailed, err)
	}

	username := CandidateUsername(id.MetadataUsername, id.Email)
	if username == "" {
		return nil, fmt.Errorf("%w: %w: no username or email", common.ErrProfileCreationFailed, common.ErrorIncorrectMetadata)
	}

	profile := &models.Profile{
		ID:             id.ID,
		Username:       username,
		Email:          id.Email,
		Tier:           common.TierMiner,
		WaitlistStatus: common.WaitlistNone,
	}

	err = p.store.CreateProfile(ctx, profile)
	switch {
	case err == nil:
		return &Result{Outcome: OutcomeCreated, Username: profile.Username}, nil
	case common.ConstraintViolationOn(err, "id"):
		return &Result{Outcome: OutcomeRaceLost}, nil
	case !common.ConstraintViolationOn(err, "username"):
		return nil, fmt.Errorf("%w: %w", common.ErrProfileCreationFailed, err)
	}

	p.logger.Info(ctx, "username taken, retrying with suffix", "identity_id", id.ID, "username", username)
	profile.Username = Disambiguate(username, p.now())

	err = p.store.CreateProfile(ctx, profile)
	switch {
	case err == nil:
		return &Result{Outcome: OutcomeDisambiguated, Username: profile.Username}, nil
	case common.ConstraintViolationOn(err, "id"):
		return &Result{Outcome: OutcomeRaceLost}, nil
	default:
		return nil, fmt.Errorf("%w: %w", common.ErrProfileCreationFailed, err)
	}
}

// Reprovision runs EnsureProfile for every identity that has no profile
// and returns how many profiles it created.
func (p *Provisioner) Reprovision(ctx context.Context) (int, error) {
	orphans, err := p.store.ListOrphanIdentities(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	var errs []error
	for _, o := range orphans {
		res, err := p.EnsureProfile(ctx, identity.Identity{ID: o.ID, Email: o.Email, MetadataUsername: o.UsernameHint})
		if err != nil {
			errs = append(errs, fmt.Errorf("identity %s: %w", o.ID, err))
			continue
		}
		if res.Outcome == OutcomeCreated || res.Outcome == OutcomeDisambiguated {
			created++
		}
	}
	return created, errors.Join(errs...)
}

// CandidateUsername prefers the sign-up metadata and falls back to the
// local part of the email.
func CandidateUsername(metadataUsername, email string) string {
	if u := strings.TrimSpace(metadataUsername); u != "" {
		return u
	}
	local, _, _ := strings.Cut(email, "@")
	return strings.TrimSpace(local)
}

// Disambiguate appends the last four digits of the unix-millisecond clock.
func Disambiguate(username string, now time.Time) string {
	return fmt.Sprintf("%s_%04d", username, now.UnixMilli()%10000)
}
