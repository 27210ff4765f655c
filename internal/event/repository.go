package event

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const eventColumns = `id, submitter_id, title, description, location, contact_email, starts_at, ends_at,
image_url, status, reviewed_at, created_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	if err := row.Scan(
		&e.ID, &e.SubmitterID, &e.Title, &e.Description, &e.Location, &e.ContactEmail, &e.StartsAt, &e.EndsAt,
		&e.ImageURL, &e.Status, &e.ReviewedAt, &e.CreatedAt,
	); err != nil {
		return nil, db.NotFound(err)
	}
	return &e, nil
}

func (r *Repository) Create(ctx context.Context, in NewEvent) (*Event, error) {
	q := `
INSERT INTO events (submitter_id, title, description, location, contact_email, starts_at, ends_at, image_url, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + eventColumns
	return scanEvent(r.db.QueryRow(ctx, q,
		in.SubmitterID, in.Title, in.Description, in.Location, in.ContactEmail, in.StartsAt, in.EndsAt, in.ImageURL,
		string(workflow.StatusPending),
	))
}

// List orders approved listings by start date and everything else newest first.
func (r *Repository) List(ctx context.Context, status *workflow.Status) ([]Event, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == nil {
		rows, err = r.db.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`)
	} else {
		order := "created_at DESC"
		if *status == workflow.StatusApproved {
			order = "starts_at ASC"
		}
		rows, err = r.db.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE status = $1 ORDER BY `+order, string(*status))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *Repository) InTx(ctx context.Context, fn func(TxStore) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) GetForUpdate(ctx context.Context, id string) (*Event, error) {
	return scanEvent(t.tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
}

func (t pgTx) SetStatus(ctx context.Context, id string, from, to workflow.Status) error {
	const q = `UPDATE events SET status = $3, reviewed_at = NOW() WHERE id = $1 AND status = $2`
	tag, err := t.tx.Exec(ctx, q, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.TransitionError{Entity: workflow.Event.Entity, From: from, To: to}
	}
	return nil
}

func (t pgTx) RecordTransition(ctx context.Context, e audit.Entry) error {
	return audit.Insert(ctx, t.tx, e)
}
