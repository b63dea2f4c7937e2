package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
)

type PgxNoteRepository struct {
	pool *pgxpool.Pool
}

// NewPgxNoteRepository creates a new repository for posting-failure notes.
func NewPgxNoteRepository(pool *pgxpool.Pool) portsrepo.NoteWriter {
	return &PgxNoteRepository{pool: pool}
}

// SaveNote persists a note on the pool so it survives the posting rollback it
// reports on.
func (r *PgxNoteRepository) SaveNote(ctx context.Context, note domain.Note) error {
	query := `
		INSERT INTO notes (note_id, client_id, org_id, table_name, record_id, reference, message, text_msg,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		note.NoteID,
		note.ClientID,
		note.OrgID,
		note.Record.TableName,
		note.Record.RecordID,
		note.Reference,
		note.Message,
		note.TextMsg,
		note.CreatedAt,
		note.CreatedBy,
		note.LastUpdatedAt,
		note.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note %s: %w", note.NoteID, err)
	}
	return nil
}
