package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unihub/academic-records-hub/internal/domain/audit"
	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

// AuditRepository implements audit.Repository for PostgreSQL.
type AuditRepository struct {
	conn *Connection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(conn *Connection) *AuditRepository {
	return &AuditRepository{conn: conn}
}

// Create persists an audit entry.
func (r *AuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	var details []byte
	if e.Details != nil {
		var err error
		details, err = json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
	}

	query := `
		INSERT INTO audit_log (id, actor_id, action, target_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		e.ID,
		e.ActorID.String(),
		e.Action,
		e.TargetID,
		details,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	return nil
}

// ListByTarget returns entries for a target, newest first.
func (r *AuditRepository) ListByTarget(ctx context.Context, targetID string, limit int) ([]*audit.Entry, error) {
	query := `
		SELECT id, actor_id, action, target_id, details, created_at
		FROM audit_log
		WHERE target_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		var actorID string
		var details []byte

		err := rows.Scan(&e.ID, &actorID, &e.Action, &e.TargetID, &details, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		e.ActorID = shared.UserID(actorID)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
			}
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
