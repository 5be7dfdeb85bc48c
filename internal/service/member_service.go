package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/titans-club/portal-api/internal/models"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

// MemberService manages the committee roster. Besides plain CRUD it hosts
// the draft editor: staged roster edits with undo and redo that only touch
// the store on commit. One draft exists at a time, matching the single
// admin editing session the portal assumes.
type MemberService struct {
	members   memberStore
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger

	draftMu sync.Mutex
	draft   []models.Member
	undo    [][]models.Member
	redo    [][]models.Member
}

// NewMemberService constructs the service.
func NewMemberService(members memberStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *MemberService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{members: members, audit: audit, validator: validate, logger: logger}
}

// List returns the roster of the viewed term: the live roster normally, the
// archived one when the session is bound to a snapshot.
func (s *MemberService) List(ctx context.Context, binding *models.WorkspaceSnapshot) ([]models.Member, error) {
	if binding != nil {
		members := make([]models.Member, len(binding.Members))
		copy(members, binding.Members)
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].HierarchyLevel < members[j].HierarchyLevel
		})
		return members, nil
	}
	return s.members.List(ctx)
}

// Get returns one member from the viewed term.
func (s *MemberService) Get(ctx context.Context, binding *models.WorkspaceSnapshot, email string) (*models.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if binding != nil {
		for _, m := range binding.Members {
			if strings.EqualFold(m.Email, email) {
				member := m
				return &member, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no archived member "+email)
	}

	member, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no member "+email)
		}
		return nil, err
	}
	return member, nil
}

// Create adds a new roster member. An email already on the roster is a
// conflict, never a silent overwrite.
func (s *MemberService) Create(ctx context.Context, m models.Member) (*models.Member, error) {
	normalizeMember(&m)
	if err := s.validator.Var(m.Email, "required,email"); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "member email is invalid")
	}
	if m.Name == "" || m.Position == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "member name and position are required")
	}

	if _, err := s.members.FindByEmail(ctx, m.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrIdentityConflict, m.Email+" is already on the roster")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err := s.members.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Update rewrites one roster record in place.
func (s *MemberService) Update(ctx context.Context, email string, m models.Member) (*models.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no member "+email)
		}
		return nil, err
	}
	if existing.IsPresident() && m.Position != models.PositionPresident {
		return nil, appErrors.Clone(appErrors.ErrPresidentLocked,
			"the presidential post changes hands only through rollover or restore")
	}

	m.Email = email
	normalizeMember(&m)
	if err := s.members.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes one member. The President cannot be deleted; the post
// changes hands only through rollover or permanent restore.
func (s *MemberService) Delete(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no member "+email)
		}
		return err
	}
	if existing.IsPresident() {
		return appErrors.Clone(appErrors.ErrPresidentLocked,
			"the President cannot be removed from the roster")
	}
	return s.members.Delete(ctx, email)
}

// BeginDraft opens a staged editing session seeded from the live roster.
// Reopening replaces any abandoned draft.
func (s *MemberService) BeginDraft(ctx context.Context) ([]models.Member, error) {
	roster, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}

	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	s.draft = cloneRoster(roster)
	s.undo = nil
	s.redo = nil
	return cloneRoster(s.draft), nil
}

// DraftMembers returns the staged roster.
func (s *MemberService) DraftMembers() ([]models.Member, error) {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	if s.draft == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no draft is open")
	}
	return cloneRoster(s.draft), nil
}

// StageUpsert adds or replaces one member in the draft.
func (s *MemberService) StageUpsert(m models.Member) ([]models.Member, error) {
	normalizeMember(&m)
	if m.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "member email is required")
	}

	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	if s.draft == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no draft is open")
	}

	s.pushUndo()
	replaced := false
	for i, existing := range s.draft {
		if strings.EqualFold(existing.Email, m.Email) {
			if existing.IsPresident() && m.Position != models.PositionPresident {
				s.popUndo()
				return nil, appErrors.Clone(appErrors.ErrPresidentLocked,
					"the presidential post changes hands only through rollover or restore")
			}
			s.draft[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		s.draft = append(s.draft, m)
	}
	return cloneRoster(s.draft), nil
}

// StageDelete removes one member from the draft. The president lock applies
// to staged deletions as well.
func (s *MemberService) StageDelete(email string) ([]models.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	if s.draft == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no draft is open")
	}

	for i, existing := range s.draft {
		if strings.EqualFold(existing.Email, email) {
			if existing.IsPresident() {
				return nil, appErrors.Clone(appErrors.ErrPresidentLocked,
					"the President cannot be removed from the roster")
			}
			s.pushUndo()
			s.draft = append(s.draft[:i:i], s.draft[i+1:]...)
			return cloneRoster(s.draft), nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no draft member "+email)
}

// Undo reverts the most recent staged edit.
func (s *MemberService) Undo() ([]models.Member, error) {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	if s.draft == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no draft is open")
	}
	if len(s.undo) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to undo")
	}
	s.redo = append(s.redo, s.draft)
	s.draft = s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	return cloneRoster(s.draft), nil
}

// Redo reapplies the most recently undone edit.
func (s *MemberService) Redo() ([]models.Member, error) {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	if s.draft == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no draft is open")
	}
	if len(s.redo) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to redo")
	}
	s.undo = append(s.undo, s.draft)
	s.draft = s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	return cloneRoster(s.draft), nil
}

// DiscardDraft abandons the staged session without touching the store.
func (s *MemberService) DiscardDraft() {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	s.draft = nil
	s.undo = nil
	s.redo = nil
}

// CommitDraft diffs the draft against the live roster and applies only the
// changed records: upserts in one batch, deletions one by one. The draft
// closes on success.
func (s *MemberService) CommitDraft(ctx context.Context, actor models.JWTClaims) error {
	s.draftMu.Lock()
	if s.draft == nil {
		s.draftMu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, "no draft is open")
	}
	draft := cloneRoster(s.draft)
	s.draftMu.Unlock()

	live, err := s.members.List(ctx)
	if err != nil {
		return err
	}

	liveByEmail := make(map[string]models.Member, len(live))
	for _, m := range live {
		liveByEmail[strings.ToLower(m.Email)] = m
	}

	var upserts []models.Member
	draftEmails := make(map[string]struct{}, len(draft))
	for _, m := range draft {
		key := strings.ToLower(m.Email)
		draftEmails[key] = struct{}{}
		if existing, ok := liveByEmail[key]; !ok || existing != m {
			upserts = append(upserts, m)
		}
	}

	var deletions []string
	for key, m := range liveByEmail {
		if _, ok := draftEmails[key]; !ok {
			if m.IsPresident() {
				return appErrors.Clone(appErrors.ErrPresidentLocked,
					"the President cannot be removed from the roster")
			}
			deletions = append(deletions, key)
		}
	}
	sort.Strings(deletions)

	if len(upserts) > 0 {
		if err := s.members.UpsertMany(ctx, upserts); err != nil {
			return err
		}
	}
	for _, email := range deletions {
		if err := s.members.Delete(ctx, email); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
	}

	if err := s.audit.Record(ctx, actor.Name, string(actor.Role), "Roster Updated",
		"committed roster draft"); err != nil {
		s.logger.Warn("audit entry for roster commit not recorded", zap.Error(err))
	}

	s.DiscardDraft()
	s.logger.Info("roster draft committed",
		zap.Int("upserts", len(upserts)), zap.Int("deletions", len(deletions)))
	return nil
}

func (s *MemberService) pushUndo() {
	s.undo = append(s.undo, cloneRoster(s.draft))
	s.redo = nil
}

func (s *MemberService) popUndo() {
	if len(s.undo) > 0 {
		s.undo = s.undo[:len(s.undo)-1]
	}
}

func normalizeMember(m *models.Member) {
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.ID = m.Email
	if m.Team == "" {
		m.Team = models.TeamForPosition(m.Position)
	}
	if m.HierarchyLevel == 0 {
		m.HierarchyLevel = 99
	}
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	if m.Status == "" {
		m.Status = models.MemberStatusActive
	}
}

func cloneRoster(members []models.Member) []models.Member {
	clone := make([]models.Member, len(members))
	copy(clone, members)
	return clone
}
