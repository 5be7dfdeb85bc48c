package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/titans-club/portal-api/internal/models"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
	"github.com/titans-club/portal-api/pkg/jobs"
)

// memberStore is the roster slice the lifecycle engines depend on.
type memberStore interface {
	List(ctx context.Context) ([]models.Member, error)
	FindByEmail(ctx context.Context, email string) (*models.Member, error)
	Upsert(ctx context.Context, m models.Member) error
	UpsertMany(ctx context.Context, members []models.Member) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// archiveStore persists and reads term snapshots.
type archiveStore interface {
	Save(ctx context.Context, snapshot models.WorkspaceSnapshot) error
	Get(ctx context.Context, termID string) (*models.WorkspaceSnapshot, error)
	List(ctx context.Context) ([]models.ArchiveSummary, error)
}

// auditRecorder appends activity trail entries. Callers treat failures as
// warnings, never as operation failures.
type auditRecorder interface {
	Record(ctx context.Context, userName, role, action, details string) error
}

// snapshotBuilder freezes the live workspace.
type snapshotBuilder interface {
	BuildSnapshot(ctx context.Context, termID string, members []models.Member) (models.WorkspaceSnapshot, error)
}

// JobTypeRollover labels queued rollover executions.
const JobTypeRollover = "term_rollover"

// Step names reported through RolloverStatus.FailedStep.
const (
	stepRosterRead   = "roster_read"
	stepSnapshot     = "snapshot"
	stepArchiveWrite = "archive_write"
)

// RolloverService drives the term handover: archive the live workspace,
// wipe it, and provision the next administrator. The whole sequence runs
// under a single mutex; the portal assumes one operator drives handover at
// a time, and concurrent rollovers are rejected rather than serialized.
//
// The sequence is deliberately not atomic across steps. The archive write
// always lands before any wipe, so a mid-sequence crash can lose the live
// workspace but never the snapshot of it.
type RolloverService struct {
	mu         sync.Mutex
	phase      models.RolloverPhase
	termID     string
	failedStep string
	lastErr    string
	updatedAt  time.Time
	pending    *models.AdminCredentials

	codec       snapshotBuilder
	members     memberStore
	archives    archiveStore
	store       documentStore
	provisioner IdentityProvisioner
	audit       auditRecorder
	validator   *validator.Validate
	logger      *zap.Logger
	clubName    string

	queue *jobs.Queue
	// now is swappable so tests can pin the computed term period.
	now func() time.Time
}

// NewRolloverService constructs the engine in the idle phase.
func NewRolloverService(
	codec snapshotBuilder,
	members memberStore,
	archives archiveStore,
	store documentStore,
	provisioner IdentityProvisioner,
	audit auditRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	clubName string,
) *RolloverService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolloverService{
		phase:       models.RolloverPhaseIdle,
		updatedAt:   time.Now().UTC(),
		codec:       codec,
		members:     members,
		archives:    archives,
		store:       store,
		provisioner: provisioner,
		audit:       audit,
		validator:   validate,
		logger:      logger,
		clubName:    clubName,
		now:         time.Now,
	}
}

// AttachQueue wires the background queue used for asynchronous execution.
// Without a queue, Submit runs the rollover synchronously.
func (s *RolloverService) AttachQueue(q *jobs.Queue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = q
}

// Status returns the current polling view of the workflow.
func (s *RolloverService) Status() models.RolloverStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.RolloverStatus{
		Phase:      s.phase,
		TermID:     s.termID,
		FailedStep: s.failedStep,
		Error:      s.lastErr,
		UpdatedAt:  s.updatedAt,
	}
}

// Begin opens the confirmation step of a new rollover. Allowed from idle,
// from a completed run, or from a failed run the operator is retrying.
func (s *RolloverService) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != models.RolloverPhaseIdle && s.phase != models.RolloverPhaseComplete && s.lastErr == "" {
		return appErrors.Clone(appErrors.ErrRolloverState,
			fmt.Sprintf("cannot begin rollover while phase is %s", s.phase))
	}
	s.transition(models.RolloverPhaseConfirmPending)
	s.failedStep = ""
	s.lastErr = ""
	s.pending = nil
	return nil
}

// Confirm acknowledges the destructive-consequences warning and moves the
// machine to credential collection.
func (s *RolloverService) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != models.RolloverPhaseConfirmPending {
		return appErrors.Clone(appErrors.ErrRolloverState,
			fmt.Sprintf("cannot confirm rollover while phase is %s", s.phase))
	}
	s.transition(models.RolloverPhaseCredentialCollection)
	return nil
}

// Cancel abandons a rollover before any destructive step ran. Once the
// machine is archiving, cancellation is no longer possible.
func (s *RolloverService) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case models.RolloverPhaseConfirmPending, models.RolloverPhaseCredentialCollection:
		s.transition(models.RolloverPhaseIdle)
		s.pending = nil
		return nil
	default:
		return appErrors.Clone(appErrors.ErrRolloverState,
			fmt.Sprintf("cannot cancel rollover while phase is %s", s.phase))
	}
}

// Submit accepts the incoming administrator's credentials and kicks off
// execution. With a queue attached the rollover runs in the background and
// the caller polls Status; without one it runs inline.
func (s *RolloverService) Submit(ctx context.Context, creds models.AdminCredentials) error {
	if err := s.validator.Struct(creds); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			"incoming admin name, email and password are all required")
	}

	s.mu.Lock()
	if s.phase != models.RolloverPhaseCredentialCollection {
		phase := s.phase
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrRolloverState,
			fmt.Sprintf("cannot submit credentials while phase is %s", phase))
	}
	s.transition(models.RolloverPhaseArchiving)
	s.failedStep = ""
	s.lastErr = ""
	s.pending = &creds
	queue := s.queue
	s.mu.Unlock()

	if queue == nil {
		return s.Execute(ctx, creds)
	}
	return queue.Enqueue(jobs.Job{
		ID:      fmt.Sprintf("rollover-%d", time.Now().UnixNano()),
		Type:    JobTypeRollover,
		Payload: creds,
	})
}

// HandleJob processes queued rollover executions.
func (s *RolloverService) HandleJob(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeRollover {
		return fmt.Errorf("unexpected job type %s", job.Type)
	}
	creds, ok := job.Payload.(models.AdminCredentials)
	if !ok {
		return fmt.Errorf("rollover job carries unexpected payload %T", job.Payload)
	}
	return s.Execute(ctx, creds)
}

// Execute runs the archive-wipe-provision sequence. The archive write
// completes before the first wipe; any failure stops the sequence where it
// stands and records the failed step for the status poller.
func (s *RolloverService) Execute(ctx context.Context, creds models.AdminCredentials) error {
	members, err := s.members.List(ctx)
	if err != nil {
		return s.fail(stepRosterRead, appErrors.Wrap(err,
			appErrors.ErrRolloverAborted.Code, appErrors.ErrRolloverAborted.Status,
			"failed to read roster before archiving"))
	}

	termID := s.computeTermID()
	snapshot, err := s.codec.BuildSnapshot(ctx, termID, members)
	if err != nil {
		return s.fail(stepSnapshot, err)
	}

	if err := s.archives.Save(ctx, snapshot); err != nil {
		return s.fail(stepArchiveWrite, appErrors.Wrap(err,
			appErrors.ErrRolloverAborted.Code, appErrors.ErrRolloverAborted.Status,
			"failed to persist snapshot for "+termID))
	}
	s.logger.Info("workspace archived", zap.String("term_id", termID),
		zap.Int("members", len(members)))

	for _, collection := range models.AuxiliaryCollections {
		if err := s.store.DeleteAll(ctx, collection); err != nil {
			return s.fail("wipe:"+collection, appErrors.Wrap(err,
				appErrors.ErrRolloverAborted.Code, appErrors.ErrRolloverAborted.Status,
				"archive saved but wipe of "+collection+" failed"))
		}
	}
	if err := s.members.DeleteAll(ctx); err != nil {
		return s.fail("wipe:"+models.CollectionUsers, appErrors.Wrap(err,
			appErrors.ErrRolloverAborted.Code, appErrors.ErrRolloverAborted.Status,
			"archive saved but roster wipe failed"))
	}

	s.mu.Lock()
	s.transition(models.RolloverPhaseProvisioning)
	s.termID = termID
	s.mu.Unlock()

	president := models.Member{
		ID:             creds.Email,
		Email:          creds.Email,
		Name:           creds.Name,
		Position:       models.PositionPresident,
		Team:           models.TeamCore,
		Role:           models.RoleAdmin,
		HierarchyLevel: 1,
		Status:         models.MemberStatusActive,
	}
	if err := s.members.Upsert(ctx, president); err != nil {
		return s.fail("provision_member", appErrors.Wrap(err,
			appErrors.ErrRolloverAborted.Code, appErrors.ErrRolloverAborted.Status,
			"workspace wiped but new president write failed"))
	}
	if err := s.provisioner.CreateCredential(ctx, creds.Email, creds.Password); err != nil {
		return s.fail("provision_credential", err)
	}

	if err := s.audit.Record(ctx, creds.Name, string(models.RoleAdmin),
		models.ActivityActionRollover, "archived term "+termID); err != nil {
		s.logger.Warn("audit entry for rollover not recorded", zap.Error(err))
	}

	s.mu.Lock()
	s.transition(models.RolloverPhaseComplete)
	s.pending = nil
	s.mu.Unlock()

	s.logger.Info("term rollover complete", zap.String("term_id", termID),
		zap.String("president", creds.Email))
	return nil
}

// computeTermID names the outgoing academic term from the current year.
func (s *RolloverService) computeTermID() string {
	year := s.now().Year()
	return fmt.Sprintf("%s %d-%d", s.clubName, year, year+1)
}

func (s *RolloverService) transition(phase models.RolloverPhase) {
	s.phase = phase
	s.updatedAt = time.Now().UTC()
}

// preDestructiveStep reports whether the step runs before the first wipe.
// Failures there leave the live workspace intact, so the machine returns
// to credential collection and the operator may resubmit directly;
// post-wipe failures stay parked in their phase until a fresh Begin.
func preDestructiveStep(step string) bool {
	switch step {
	case stepRosterRead, stepSnapshot, stepArchiveWrite:
		return true
	}
	return false
}

func (s *RolloverService) fail(step string, err error) error {
	s.mu.Lock()
	s.failedStep = step
	s.lastErr = err.Error()
	if preDestructiveStep(step) {
		s.phase = models.RolloverPhaseCredentialCollection
	}
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()
	s.logger.Error("term rollover failed", zap.String("step", step), zap.Error(err))
	return err
}
