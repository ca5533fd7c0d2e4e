package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/logging"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/provisioner"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/repomanager"
)

// ProfileStore is the provisioner's view of the database.
type ProfileStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

var _ provisioner.Store = (*ProfileStore)(nil)

func NewProfileStore(db *sql.DB, m repomanager.RepositoryManager) *ProfileStore {
	return &ProfileStore{db: db, repomanager: m}
}

func (s *ProfileStore) FindProfile(ctx context.Context, id string) (*models.Profile, error) {
	return s.repomanager.Profiles(s.db).Find(ctx, id)
}

func (s *ProfileStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	return s.repomanager.Profiles(s.db).Create(ctx, p)
}

func (s *ProfileStore) ListOrphanIdentities(ctx context.Context) ([]*models.Identity, error) {
	return s.repomanager.Identities(s.db).ListWithoutProfile(ctx)
}

type ProvisioningFailure struct {
	IdentityID string
	Error      string
	At         time.Time
}

// ProvisioningAlerts keeps the most recent provisioning failures for the
// audit endpoint.
type ProvisioningAlerts struct {
	mu     sync.Mutex
	limit  int
	recent []ProvisioningFailure
	logger logging.Logger
}

var _ provisioner.Notifier = (*ProvisioningAlerts)(nil)

func NewProvisioningAlerts(limit int, logger logging.Logger) *ProvisioningAlerts {
	return &ProvisioningAlerts{limit: limit, logger: logger.With("module", "alerts")}
}

func (a *ProvisioningAlerts) ProfileCreationFailed(ctx context.Context, identityID string, err error) {
	a.logger.Warn(ctx, "profile creation failed; identity left without profile", "identity_id", identityID, "error", err)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, ProvisioningFailure{IdentityID: identityID, Error: err.Error(), At: time.Now()})
	if over := len(a.recent) - a.limit; over > 0 {
		a.recent = a.recent[over:]
	}
}

// Recent returns failures oldest first.
func (a *ProvisioningAlerts) Recent() []ProvisioningFailure {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ProvisioningFailure, len(a.recent))
	copy(out, a.recent)
	return out
}

type AuditReport struct {
	Orphans  []*models.Identity
	Failures []ProvisioningFailure
}

// AuditService is the admin view over provisioning: identities without a
// profile and a way to fix them.
type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	provisioner *provisioner.Provisioner
	alerts      *ProvisioningAlerts
}

func NewAuditService(db *sql.DB, m repomanager.RepositoryManager, p *provisioner.Provisioner, alerts *ProvisioningAlerts) *AuditService {
	return &AuditService{db: db, repomanager: m, provisioner: p, alerts: alerts}
}

func (s *AuditService) requireAdmin(ctx context.Context, userID string) error {
	p, err := s.repomanager.Profiles(s.db).Find(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorForbidden
		}
		return err
	}
	if p.Tier != common.TierAdmin {
		return common.ErrorForbidden
	}
	return nil
}

func (s *AuditService) Audit(ctx context.Context, callerID string) (*AuditReport, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	orphans, err := s.repomanager.Identities(s.db).ListWithoutProfile(ctx)
	if err != nil {
		return nil, err
	}
	return &AuditReport{Orphans: orphans, Failures: s.alerts.Recent()}, nil
}

func (s *AuditService) Reprovision(ctx context.Context, callerID string) (int, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return 0, err
	}
	return s.provisioner.Reprovision(ctx)
}
