package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Operation names recorded in the log
const (
	OperationSet      = "set"
	OperationRollback = "rollback"
)

// Action is one channel write issued by pubctl
type Action struct {
	ID            int64     `json:"id"`
	Project       string    `json:"project"`
	Operation     string    `json:"operation"`
	Channel       string    `json:"channel"`
	ChannelID     string    `json:"channelId,omitempty"`
	PublicationID string    `json:"publicationId,omitempty"`
	Success       bool      `json:"success"`
	FailureReason string    `json:"failureReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DAO reads and writes channel actions
type DAO struct {
	db  *Database
	now func() time.Time
}

// NewDAO creates a new Data Access Object for the audit log
func NewDAO(db *Database) *DAO {
	return &DAO{db: db, now: time.Now}
}

// Record inserts a. A zero CreatedAt is stamped with the current time.
func (d *DAO) Record(ctx context.Context, a Action) (int64, error) {
	if a.Project == "" || a.Operation == "" {
		return 0, fmt.Errorf("audit action needs a project and an operation")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = d.now()
	}

	query := `
	INSERT INTO channel_actions
	(project, operation, channel, channel_id, publication_id, success, failure_reason, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var reason sql.NullString
	if a.FailureReason != "" {
		reason = sql.NullString{String: a.FailureReason, Valid: true}
	}
	success := 0
	if a.Success {
		success = 1
	}

	result, err := d.db.db.ExecContext(ctx, query,
		a.Project, a.Operation, a.Channel, a.ChannelID, a.PublicationID, success, reason, a.CreatedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to insert channel action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// List returns the newest actions of project, at most limit of them
func (d *DAO) List(ctx context.Context, project string, limit int) ([]Action, error) {
	query := `
	SELECT id, project, operation, channel, channel_id, publication_id, success, failure_reason, created_at
	FROM channel_actions
	WHERE project = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`

	rows, err := d.db.db.QueryContext(ctx, query, project, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		var success int
		var reason sql.NullString
		var created int64

		if err := rows.Scan(&a.ID, &a.Project, &a.Operation, &a.Channel, &a.ChannelID,
			&a.PublicationID, &success, &reason, &created); err != nil {
			return nil, fmt.Errorf("failed to scan channel action: %w", err)
		}

		a.Success = success == 1
		if reason.Valid {
			a.FailureReason = reason.String
		}
		a.CreatedAt = time.Unix(0, created)
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating channel actions: %w", err)
	}
	return actions, nil
}

// PruneOldRecords deletes actions older than maxAge
func (d *DAO) PruneOldRecords(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := d.now().Add(-maxAge).UnixNano()

	result, err := d.db.db.ExecContext(ctx, `DELETE FROM channel_actions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune old records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows count: %w", err)
	}
	return affected, nil
}

// PruneExcessRecords keeps only the newest maxRecords actions per project
func (d *DAO) PruneExcessRecords(ctx context.Context, maxRecords int) (int64, error) {
	if maxRecords <= 0 {
		return 0, nil
	}

	query := `
	DELETE FROM channel_actions
	WHERE id IN (
		SELECT id FROM (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY project ORDER BY created_at DESC, id DESC) AS rn
			FROM channel_actions
		)
		WHERE rn > ?
	)
	`

	result, err := d.db.db.ExecContext(ctx, query, maxRecords)
	if err != nil {
		return 0, fmt.Errorf("failed to delete excess records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows count: %w", err)
	}
	return affected, nil
}
