package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/titans-club/portal-api/internal/models"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
	"github.com/titans-club/portal-api/pkg/jobs"
)

// sessionStore keeps per-session archive view bindings.
type sessionStore interface {
	GetBinding(ctx context.Context, sessionID string) (*models.WorkspaceSnapshot, error)
	SetBinding(ctx context.Context, sessionID string, snapshot models.WorkspaceSnapshot) error
	ClearBinding(ctx context.Context, sessionID string) error
	ClearBindingsForTerm(ctx context.Context, termID string) error
}

// JobTypeRestore labels queued permanent restore executions.
const JobTypeRestore = "permanent_restore"

// restoreJobPayload carries the inputs of a queued permanent restore.
type restoreJobPayload struct {
	TermID string
	Admin  models.AdminCredentials
}

// RestoreService serves both restore flavours. Temporary view binds a
// session to a snapshot without touching live data; permanent restore
// replays a snapshot over the live workspace and hands the roster to a new
// administrator. Like rollover, permanent restore is sequential and not
// atomic across steps, and assumes a single operator.
type RestoreService struct {
	mu         sync.Mutex
	state      models.RestoreState
	termID     string
	failedStep string
	lastErr    string
	updatedAt  time.Time

	archives    archiveStore
	sessions    sessionStore
	members     memberStore
	store       documentStore
	provisioner IdentityProvisioner
	audit       auditRecorder
	logger      *zap.Logger

	queue *jobs.Queue
}

// NewRestoreService constructs the engine in the idle state.
func NewRestoreService(
	archives archiveStore,
	sessions sessionStore,
	members memberStore,
	store documentStore,
	provisioner IdentityProvisioner,
	audit auditRecorder,
	logger *zap.Logger,
) *RestoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RestoreService{
		state:       models.RestoreStateIdle,
		updatedAt:   time.Now().UTC(),
		archives:    archives,
		sessions:    sessions,
		members:     members,
		store:       store,
		provisioner: provisioner,
		audit:       audit,
		logger:      logger,
	}
}

// AttachQueue wires the background queue used for asynchronous permanent
// restores. Without a queue, ExecutePermanentRestore runs inline.
func (s *RestoreService) AttachQueue(q *jobs.Queue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = q
}

// Status returns the current polling view of the permanent restore.
func (s *RestoreService) Status() models.RestoreStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.RestoreStatus{
		State:      s.state,
		TermID:     s.termID,
		FailedStep: s.failedStep,
		Error:      s.lastErr,
		UpdatedAt:  s.updatedAt,
	}
}

// ListArchives returns the picker rows for every archived term.
func (s *RestoreService) ListArchives(ctx context.Context) ([]models.ArchiveSummary, error) {
	return s.archives.List(ctx)
}

// GetArchive returns the summary row for one archived term.
func (s *RestoreService) GetArchive(ctx context.Context, termID string) (models.ArchiveSummary, error) {
	snapshot, err := s.archives.Get(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ArchiveSummary{}, appErrors.Clone(appErrors.ErrNotFound, "no archive exists for "+termID)
		}
		return models.ArchiveSummary{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			"failed to load archive "+termID)
	}
	return snapshot.Summary(), nil
}

// BindTemporaryView points the session at an archived term. Rebinding the
// same session, to the same or a different term, simply replaces the
// binding. Live data is never touched.
func (s *RestoreService) BindTemporaryView(ctx context.Context, sessionID, termID string) (*models.WorkspaceSnapshot, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required to bind an archive view")
	}
	snapshot, err := s.archives.Get(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no archive exists for "+termID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRestoreAborted.Code, appErrors.ErrRestoreAborted.Status,
			"failed to load archive "+termID)
	}
	if err := s.sessions.SetBinding(ctx, sessionID, *snapshot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRestoreAborted.Code, appErrors.ErrRestoreAborted.Status,
			"failed to bind session to "+termID)
	}
	s.logger.Info("archive view bound", zap.String("session_id", sessionID), zap.String("term_id", termID))
	return snapshot, nil
}

// ClearView returns the session to the active term. Clearing a session
// that has no binding is a no-op.
func (s *RestoreService) ClearView(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.ClearBinding(ctx, sessionID)
}

// Binding reports the snapshot the session is viewing, or nil for live
// mode.
func (s *RestoreService) Binding(ctx context.Context, sessionID string) (*models.WorkspaceSnapshot, error) {
	if sessionID == "" {
		return nil, nil
	}
	return s.sessions.GetBinding(ctx, sessionID)
}

// SubmitPermanentRestore validates the request and kicks off execution,
// queued when a queue is attached and inline otherwise. Only one permanent
// restore may run at a time.
func (s *RestoreService) SubmitPermanentRestore(ctx context.Context, termID string, admin models.AdminCredentials) error {
	if admin.Name == "" || admin.Email == "" || admin.Password == "" {
		return appErrors.Clone(appErrors.ErrValidation,
			"restoring admin name, email and password are all required")
	}

	s.mu.Lock()
	if s.state == models.RestoreStateRunning {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrConflict, "a permanent restore is already running")
	}
	s.state = models.RestoreStateRunning
	s.termID = termID
	s.failedStep = ""
	s.lastErr = ""
	s.updatedAt = time.Now().UTC()
	queue := s.queue
	s.mu.Unlock()

	if queue == nil {
		return s.ExecutePermanentRestore(ctx, termID, admin)
	}
	return queue.Enqueue(jobs.Job{
		ID:      fmt.Sprintf("restore-%d", time.Now().UnixNano()),
		Type:    JobTypeRestore,
		Payload: restoreJobPayload{TermID: termID, Admin: admin},
	})
}

// HandleJob processes queued restore executions.
func (s *RestoreService) HandleJob(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeRestore {
		return fmt.Errorf("unexpected job type %s", job.Type)
	}
	payload, ok := job.Payload.(restoreJobPayload)
	if !ok {
		return fmt.Errorf("restore job carries unexpected payload %T", job.Payload)
	}
	return s.ExecutePermanentRestore(ctx, payload.TermID, payload.Admin)
}

// ExecutePermanentRestore replays the archived term over the live
// workspace. Order: read the snapshot fully before any wipe, wipe and
// replay the auxiliary collections, then wipe and replay the roster with
// the restoring admin installed as President, provision the credential,
// and finally drop every view binding that still points at the term. The
// roster is the last thing wiped, so an auxiliary replay failure never
// leaves the workspace without members.
func (s *RestoreService) ExecutePermanentRestore(ctx context.Context, termID string, admin models.AdminCredentials) error {
	snapshot, err := s.archives.Get(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.fail("archive_read", appErrors.Clone(appErrors.ErrNotFound, "no archive exists for "+termID))
		}
		return s.fail("archive_read", appErrors.Wrap(err,
			appErrors.ErrRestoreAborted.Code, appErrors.ErrRestoreAborted.Status,
			"failed to load archive "+termID))
	}

	archived := UnpackSnapshot(*snapshot)
	for _, collection := range models.AuxiliaryCollections {
		if err := s.store.DeleteAll(ctx, collection); err != nil {
			return s.fail("wipe:"+collection, appErrors.Wrap(err,
				appErrors.ErrRestoreAborted.Code, appErrors.ErrRestoreAborted.Status,
				"failed to wipe "+collection+" before replay"))
		}
	}
	for _, collection := range models.AuxiliaryCollections {
		docs := archived[collection]
		if len(docs) == 0 {
			continue
		}
		if err := s.store.SetMany(ctx, collection, docs); err != nil {
			return s.fail("replay:"+collection, appErrors.Wrap(err,
				appErrors.ErrRestoreAborted.Code, appErrors.ErrRestoreAborted.Status,
				"failed to replay "+collection))
		}
	}

	if err := s.members.DeleteAll(ctx); err != nil {
		return s.fail("wipe:"+models.CollectionUsers, appErrors.Wrap(err,
			appErrors.ErrRestoreAborted.Code, appErrors.ErrRestoreAborted.Status,
			"failed to wipe roster before replay"))
	}

	roster := rewritePresident(snapshot.Members, admin)
	if err := s.members.UpsertMany(ctx, roster); err != nil {
		return s.fail("replay:"+models.CollectionUsers, appErrors.Wrap(err,
			appErrors.ErrRestoreAborted.Code, appErrors.ErrRestoreAborted.Status,
			"failed to replay roster"))
	}

	if err := s.provisioner.CreateCredential(ctx, admin.Email, admin.Password); err != nil {
		return s.fail("provision_credential", err)
	}

	if err := s.sessions.ClearBindingsForTerm(ctx, termID); err != nil {
		s.logger.Warn("stale archive view bindings not cleared", zap.String("term_id", termID), zap.Error(err))
	}
	if err := s.audit.Record(ctx, admin.Name, string(models.RoleAdmin),
		models.ActivityActionRestore, "restored term "+termID); err != nil {
		s.logger.Warn("audit entry for restore not recorded", zap.Error(err))
	}

	s.mu.Lock()
	s.state = models.RestoreStateComplete
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Info("permanent restore complete", zap.String("term_id", termID),
		zap.String("president", admin.Email))
	return nil
}

// rewritePresident re-keys the archived presidential record under the
// restoring admin's identity. Every other roster record replays untouched.
func rewritePresident(members []models.Member, admin models.AdminCredentials) []models.Member {
	roster := make([]models.Member, 0, len(members)+1)
	found := false
	for _, m := range members {
		if m.IsPresident() && !found {
			m.ID = admin.Email
			m.Email = admin.Email
			m.Name = admin.Name
			m.Role = models.RoleAdmin
			m.Status = models.MemberStatusActive
			found = true
		}
		roster = append(roster, m)
	}
	if !found {
		roster = append(roster, models.Member{
			ID:             admin.Email,
			Email:          admin.Email,
			Name:           admin.Name,
			Position:       models.PositionPresident,
			Team:           models.TeamCore,
			Role:           models.RoleAdmin,
			HierarchyLevel: 1,
			Status:         models.MemberStatusActive,
		})
	}
	return roster
}

func (s *RestoreService) fail(step string, err error) error {
	s.mu.Lock()
	s.state = models.RestoreStateFailed
	s.failedStep = step
	s.lastErr = err.Error()
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()
	s.logger.Error("permanent restore failed", zap.String("step", step), zap.Error(err))
	return err
}
