package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/repository"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

// QueryService manages the leadership inbox.
type QueryService struct {
	store  documentStore
	audit  auditRecorder
	logger *zap.Logger
}

// NewQueryService constructs the service.
func NewQueryService(store documentStore, audit auditRecorder, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{store: store, audit: audit, logger: logger}
}

// List returns the inbox of the viewed term, most recent first. Admins see
// everything; everyone else sees only their own queries. The same rule
// applies whether the session views live data or an archived term.
func (s *QueryService) List(ctx context.Context, binding *models.WorkspaceSnapshot, viewer models.JWTClaims) ([]models.Query, error) {
	var docs []models.Document
	var err error
	if binding != nil {
		docs = binding.CollectionDocs(models.CollectionQueries)
	} else {
		docs, err = s.store.ListAll(ctx, models.CollectionQueries)
		if err != nil {
			return nil, err
		}
	}

	queries := make([]models.Query, 0, len(docs))
	for _, doc := range docs {
		var q models.Query
		if err := repository.DecodeDoc(doc, &q); err != nil {
			return nil, err
		}
		if viewer.Role != models.RoleAdmin && !strings.EqualFold(q.SenderEmail, viewer.Email) {
			continue
		}
		queries = append(queries, q)
	}
	sort.SliceStable(queries, func(i, j int) bool {
		return queries[i].Timestamp.After(queries[j].Timestamp)
	})
	return queries, nil
}

// Submit files a new query under the sender's identity.
func (s *QueryService) Submit(ctx context.Context, sender models.JWTClaims, subject, message string) (*models.Query, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if subject == "" || message == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "query subject and message are required")
	}

	query := models.Query{
		ID:          uuid.NewString(),
		SenderName:  sender.Name,
		SenderEmail: strings.ToLower(sender.Email),
		Subject:     subject,
		Message:     message,
		Status:      models.QueryStatusOpen,
		Timestamp:   models.NowWhen(),
	}
	doc, err := repository.EncodeDoc(query)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetOne(ctx, models.CollectionQueries, doc.ID, doc.Data); err != nil {
		return nil, err
	}
	return &query, nil
}

// Answer resolves a query with the responder's reply.
func (s *QueryService) Answer(ctx context.Context, responder models.JWTClaims, id, answer string) (*models.Query, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "answer must not be empty")
	}

	doc, err := s.store.Get(ctx, models.CollectionQueries, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no query "+id)
		}
		return nil, err
	}
	var query models.Query
	if err := repository.DecodeDoc(*doc, &query); err != nil {
		return nil, err
	}

	query.Answer = answer
	query.AnsweredBy = responder.Name
	query.Status = models.QueryStatusResolved

	updated, err := repository.EncodeDoc(query)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetOne(ctx, models.CollectionQueries, id, updated.Data); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, responder.Name, string(responder.Role), "Query Answered", query.Subject); err != nil {
		s.logger.Warn("audit entry for query answer not recorded", zap.Error(err))
	}
	return &query, nil
}

// Delete removes one query from the inbox.
func (s *QueryService) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteOne(ctx, models.CollectionQueries, id)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "no query "+id)
	}
	return err
}
