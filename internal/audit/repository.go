package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

// Entry is one committed status change.
type Entry struct {
	ID        int64           `json:"id"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	From      workflow.Status `json:"from"`
	To        workflow.Status `json:"to"`
	ActorID   *string         `json:"actorId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert records a transition inside the caller's transaction.
func Insert(ctx context.Context, tx pgx.Tx, e Entry) error {
	const q = `
INSERT INTO status_transitions (entity, entity_id, from_status, to_status, actor_id)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := tx.Exec(ctx, q, e.Entity, e.EntityID, string(e.From), string(e.To), e.ActorID)
	return err
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const q = `
SELECT id, entity, entity_id::text, from_status, to_status, actor_id::text, created_at
FROM status_transitions
ORDER BY created_at DESC, id DESC
LIMIT $1
`
	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.From, &e.To, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) ForEntity(ctx context.Context, entity, entityID string) ([]Entry, error) {
	const q = `
SELECT id, entity, entity_id::text, from_status, to_status, actor_id::text, created_at
FROM status_transitions
WHERE entity = $1 AND entity_id = $2
ORDER BY created_at ASC, id ASC
`
	rows, err := r.db.Query(ctx, q, entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.From, &e.To, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
