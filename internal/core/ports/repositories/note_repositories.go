package repositories

import (
	"context"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// NoteWriter defines write operations for posting-failure notes
type NoteWriter interface {
	// SaveNote persists a note. Runs outside the posting transaction so the
	// note survives the rollback it reports on.
	SaveNote(ctx context.Context, note domain.Note) error
}
