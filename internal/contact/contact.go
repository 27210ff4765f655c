package contact

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Input struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=300"`
	Message string `json:"message" validate:"required,max=5000"`
}

type Store interface {
	Create(ctx context.Context, in Input) (*Message, error)
	List(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, id string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, in Input) (*Message, error) {
	const q = `
INSERT INTO contacts (name, email, subject, message)
VALUES ($1, $2, $3, $4)
RETURNING id, name, email, subject, message, created_at
`
	var m Message
	if err := r.db.QueryRow(ctx, q, in.Name, in.Email, in.Subject, in.Message).
		Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) List(ctx context.Context) ([]Message, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, email, subject, message, created_at FROM contacts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

type Handlers struct {
	Contacts Store
}

// Create is public; anyone can leave a message.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := api.Decode(r, &in); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	m, err := h.Contacts.Create(r.Context(), in)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("contact message received", "contact_id", m.ID)
	api.WriteJSON(w, http.StatusCreated, m)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Contacts.List(r.Context())
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	if err := h.Contacts.Delete(r.Context(), id); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
