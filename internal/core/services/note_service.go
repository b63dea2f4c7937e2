package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
	"github.com/glsuite/gl_posting_app/internal/middleware"
)

// noteService records posting failures as notes. Strictly best effort: every
// internal failure is logged and swallowed so notification can never fail the
// posting operation it reports on.
type noteService struct {
	noteRepo portsrepo.NoteWriter
}

// NewNoteService creates the error notifier.
func NewNoteService(noteRepo portsrepo.NoteWriter) portssvc.ErrorNotifierSvc {
	return &noteService{noteRepo: noteRepo}
}

var _ portssvc.ErrorNotifierSvc = (*noteService)(nil)

func (s *noteService) NotifyPostingError(ctx context.Context, doc *domain.Document, perr *apperrors.PostingError) {
	logger := middleware.GetLoggerFromCtx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Failed to create the error note. Skipped", slog.Any("panic", r))
		}
	}()

	status := perr.StatusOrError()
	text := status.Message()
	if perr.Detail != "" {
		text += " (" + perr.Detail + ")"
	}
	text += fmt.Sprintf(" - %s, DocumentNo=%s, DateAcct=%s, Amount=%s",
		doc.DocType,
		doc.DocumentNo,
		doc.AcctDate.Format("2006-01-02"),
		doc.Amount(domain.AmtTypeGross).String(),
	)

	now := time.Now().UTC()
	note := domain.Note{
		NoteID:    uuid.NewString(),
		ClientID:  doc.ClientID,
		OrgID:     doc.OrgID,
		Record:    doc.Ref,
		Reference: fmt.Sprintf("%s[%d]", doc.Ref.TableName, doc.Ref.RecordID),
		Message:   status.Message(),
		TextMsg:   text,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.noteRepo.SaveNote(ctx, note); err != nil {
		logger.Warn("Failed to create the error note. Skipped", slog.String("error", err.Error()))
	}
}
