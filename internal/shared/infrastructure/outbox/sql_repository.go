package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const timeLayout = time.RFC3339

const outboxColumns = `id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	payload, metadata, created_at, published_at, next_retry_at, retry_count,
	last_error, dead_lettered_at, dead_letter_reason`

// SQLRepository implements Repository on top of database.Connection, so the
// same statements serve SQLite and PostgreSQL. Writes join the transaction
// carried by the context when there is one.
type SQLRepository struct {
	conn database.Connection
	now  func() time.Time
}

// NewSQLRepository creates a new outbox repository.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{
		conn: conn,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Save stores a new outbox message.
func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	return r.insert(ctx, database.ExecutorFromContext(ctx, r.conn), msg)
}

// SaveBatch stores multiple outbox messages atomically.
func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if tx := database.TxFromContext(ctx); tx != nil {
		for _, msg := range msgs {
			if err := r.insert(ctx, tx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, msg := range msgs {
		if err := r.insert(ctx, tx, msg); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *SQLRepository) insert(ctx context.Context, exec database.Executor, msg *Message) error {
	var metadata sql.NullString
	if len(msg.Metadata) > 0 {
		metadata = sql.NullString{String: string(msg.Metadata), Valid: true}
	}

	err := exec.QueryRow(ctx, `
		INSERT INTO outbox (
			event_id, aggregate_type, aggregate_id, event_type, routing_key,
			payload, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		metadata,
		msg.CreatedAt.UTC().Format(timeLayout),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert outbox message %s: %w", msg.RoutingKey, err)
	}
	return nil
}

// GetUnpublished retrieves pending messages whose retry time has come,
// ordered by creation time.
func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	return r.query(ctx, `
		SELECT `+outboxColumns+`
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`,
		r.now().Format(timeLayout), limit,
	)
}

// MarkPublished marks a message as successfully published.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.exec(ctx, `
		UPDATE outbox
		SET published_at = ?, next_retry_at = NULL
		WHERE id = ?`,
		r.now().Format(timeLayout), id,
	)
}

// MarkFailed records a publish failure with error message.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`,
		errMsg, nextRetryAt.UTC().Format(timeLayout), id,
	)
}

// MarkDead marks a message as dead-lettered.
func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	return r.exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, dead_lettered_at = ?, dead_letter_reason = ?, last_error = ?
		WHERE id = ?`,
		r.now().Format(timeLayout), reason, reason, id,
	)
}

// DeleteOld removes successfully published messages older than the retention period.
func (r *SQLRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := r.now().AddDate(0, 0, -olderThanDays).Format(timeLayout)
	result, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		DELETE FROM outbox
		WHERE published_at IS NOT NULL AND published_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	return err
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	return database.Collect(rows, err, scanMessage)
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg                                           Message
		eventID, payload, createdAt                   string
		metadata, publishedAt, nextRetryAt, lastError sql.NullString
		deadLetteredAt, deadLetterReason              sql.NullString
	)

	err := row.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.RoutingKey,
		&payload, &metadata, &createdAt, &publishedAt, &nextRetryAt, &msg.RetryCount,
		&lastError, &deadLetteredAt, &deadLetterReason,
	)
	if err != nil {
		return nil, err
	}

	msg.EventID, _ = uuid.Parse(eventID)
	msg.Payload = json.RawMessage(payload)
	msg.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if metadata.Valid {
		msg.Metadata = json.RawMessage(metadata.String)
	}
	msg.PublishedAt = parseNullTime(publishedAt)
	msg.NextRetryAt = parseNullTime(nextRetryAt)
	msg.DeadLetteredAt = parseNullTime(deadLetteredAt)
	if lastError.Valid {
		msg.LastError = &lastError.String
	}
	if deadLetterReason.Valid {
		msg.DeadLetterReason = &deadLetterReason.String
	}
	return &msg, nil
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return nil
	}
	return &t
}
