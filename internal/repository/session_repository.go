package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/titans-club/portal-api/internal/models"
)

// SessionRepository persists archive view bindings in Redis so a binding
// survives page reloads within a session. Bindings carry no TTL; they live
// until the user returns to the active term or a permanent restore clears
// them.
type SessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(client *redis.Client, prefix string) *SessionRepository {
	if prefix == "" {
		prefix = "titans_archive_view"
	}
	return &SessionRepository{client: client, prefix: prefix}
}

func (r *SessionRepository) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

// GetBinding returns the snapshot bound to the session, or nil when the
// session views live data.
func (r *SessionRepository) GetBinding(ctx context.Context, sessionID string) (*models.WorkspaceSnapshot, error) {
	raw, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get view binding %s: %w", sessionID, err)
	}

	var snapshot models.WorkspaceSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode view binding %s: %w", sessionID, err)
	}
	return &snapshot, nil
}

// SetBinding stores the serialized snapshot for the session.
func (r *SessionRepository) SetBinding(ctx context.Context, sessionID string, snapshot models.WorkspaceSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode view binding %s: %w", sessionID, err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), payload, 0).Err(); err != nil {
		return fmt.Errorf("set view binding %s: %w", sessionID, err)
	}
	return nil
}

// ClearBinding removes the session's binding. Clearing an absent binding is
// a no-op.
func (r *SessionRepository) ClearBinding(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear view binding %s: %w", sessionID, err)
	}
	return nil
}

// ClearBindingsForTerm drops every binding that references the given term,
// used after a permanent restore makes that archive the live workspace.
func (r *SessionRepository) ClearBindingsForTerm(ctx context.Context, termID string) error {
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return fmt.Errorf("inspect view binding %s: %w", key, err)
		}
		var snapshot models.WorkspaceSnapshot
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			continue
		}
		if snapshot.TermID != termID {
			continue
		}
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("clear view binding %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan view bindings: %w", err)
	}
	return nil
}
