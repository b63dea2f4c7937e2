package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
	"github.com/glsuite/gl_posting_app/internal/middleware"
)

// maxDependentDocuments caps cascade posting. A candidate set this large is
// assumed to be an upstream filtering defect, so the cascade is skipped
// entirely instead of posting a suspiciously large batch.
const maxDependentDocuments = 200

// PostingServiceConfig carries the orchestrator's behavioral switches.
type PostingServiceConfig struct {
	// CreateNoteOnError persists a note on posting failure (best effort).
	CreateNoteOnError bool
}

// postingService is the posting orchestrator: it owns the lock protocol, the
// posting transaction, the per-schema balancing pipeline and the guaranteed
// unlock on every exit path.
type postingService struct {
	docRepo     portsrepo.DocumentRepositoryFacade
	factRepo    portsrepo.FactWriter
	schemaRepo  portsrepo.AcctSchemaReader
	rateRepo    portsrepo.ExchangeRateReader
	txManager   portsrepo.TransactionManager
	registry    *GeneratorRegistry
	periodSvc   portssvc.PeriodSvc
	convertSvc  portssvc.ConvertibilitySvc
	notifier    portssvc.ErrorNotifierSvc
	distributor portssvc.FactDistributor
	listeners   []portssvc.FactListener
	cfg         PostingServiceConfig
}

// NewPostingService creates the posting orchestrator. distributor may be nil
// (no schema-specific distribution); listeners may be empty.
func NewPostingService(
	docRepo portsrepo.DocumentRepositoryFacade,
	factRepo portsrepo.FactWriter,
	schemaRepo portsrepo.AcctSchemaReader,
	rateRepo portsrepo.ExchangeRateReader,
	txManager portsrepo.TransactionManager,
	registry *GeneratorRegistry,
	periodSvc portssvc.PeriodSvc,
	convertSvc portssvc.ConvertibilitySvc,
	notifier portssvc.ErrorNotifierSvc,
	distributor portssvc.FactDistributor,
	listeners []portssvc.FactListener,
	cfg PostingServiceConfig,
) portssvc.PostingSvcFacade {
	return &postingService{
		docRepo:     docRepo,
		factRepo:    factRepo,
		schemaRepo:  schemaRepo,
		rateRepo:    rateRepo,
		txManager:   txManager,
		registry:    registry,
		periodSvc:   periodSvc,
		convertSvc:  convertSvc,
		notifier:    notifier,
		distributor: distributor,
		listeners:   listeners,
		cfg:         cfg,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// Post implements the posting state machine. The lock is taken and released
// outside the posting transaction so lock state stays externally visible even
// when the transaction rolls back. The unlock runs deferred, panics included.
func (s *postingService) Post(ctx context.Context, ref domain.TableRecordRef, force, repost bool) (perr *apperrors.PostingError) {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("table", ref.TableName),
		slog.Int64("record_id", ref.RecordID),
		slog.Bool("force", force),
		slog.Bool("repost", repost),
	)

	// Lock the document row. On failure we return without unlocking: the row
	// is either held by a concurrent poster (whose lock we must not clear) or
	// was never claimed by us.
	if lockErr := s.docRepo.LockDocument(ctx, ref, force, repost); lockErr != nil {
		logger.Warn("Failed to lock document for posting", slog.String("error", lockErr.String()))
		return lockErr
	}
	logger.Debug("Document locked for posting")

	var doc *domain.Document

	defer func() {
		if r := recover(); r != nil {
			perr = apperrors.NewPostingError(doc, fmt.Errorf("%w: panic during posting: %v", apperrors.ErrInternal, r))
			logger.Error("Recovered from panic during posting", slog.Any("panic", r))
		}
		if perr != nil {
			logger.Warn("Posting failed", slog.String("status", string(perr.StatusOrError())), slog.String("error", perr.String()))
			if s.cfg.CreateNoteOnError && doc != nil {
				s.notifier.NotifyPostingError(ctx, doc, perr)
			}
		}
		if err := s.docRepo.UnlockDocument(ctx, ref, perr); err != nil {
			// The document stays locked; administrative clearing is the
			// documented recovery path.
			logger.Error("Failed to unlock document after posting", slog.String("error", err.Error()))
		}
	}()

	// Open a new transaction unless the caller brought one; joining keeps
	// commit/rollback with the caller.
	tx, joined := portsrepo.TxFromCtx(ctx)
	if !joined {
		var err error
		tx, err = s.txManager.Begin(ctx)
		if err != nil {
			return apperrors.NewPostingError(nil, fmt.Errorf("failed to begin posting transaction: %w", err)).
				WithPreservePostedStatus()
		}
	}

	doc, perr = s.post0(ctx, tx, ref, repost)

	if perr != nil {
		if !joined {
			if err := s.txManager.Rollback(ctx, tx); err != nil {
				logger.Error("Failed to roll back posting transaction", slog.String("error", err.Error()))
			}
		}
		return perr
	}

	if !joined {
		if err := s.txManager.Commit(ctx, tx); err != nil {
			return apperrors.NewPostingError(doc, fmt.Errorf("failed to commit posting transaction: %w", err))
		}
	}

	logger.Info("Document posted", slog.String("document_no", doc.DocumentNo))

	// Cascade to dependent documents after the parent committed. Dependent
	// failures are logged, never escalated.
	s.postDependents(ctx, doc)

	return nil
}

// post0 runs the posting pipeline inside the transaction and returns the
// loaded document (for unlock/notify context) plus the classified failure.
func (s *postingService) post0(ctx context.Context, tx pgx.Tx, ref domain.TableRecordRef, repost bool) (*domain.Document, *apperrors.PostingError) {
	// Load document details. Nothing was mutated yet, so all failures here
	// preserve the previous posted status.
	doc, err := s.docRepo.FindDocumentByRef(ctx, ref)
	if err != nil {
		return nil, apperrors.NewPostingError(nil, fmt.Errorf("failed to load document: %w", err)).
			WithPreservePostedStatus()
	}
	doc.Lines, err = s.docRepo.FindDocumentLines(ctx, ref)
	if err != nil {
		return doc, apperrors.NewPostingError(doc, fmt.Errorf("failed to load document lines: %w", err)).
			WithPreservePostedStatus()
	}

	if !doc.Status.IsPostable() {
		return doc, apperrors.NewPostingError(doc, nil).
			WithDetail(fmt.Sprintf("Invalid DocStatus='%s' for DocumentNo=%s", doc.Status, doc.DocumentNo)).
			WithPreservePostedStatus()
	}

	schemas, err := s.schemaRepo.ListSchemasByClient(ctx, doc.ClientID)
	if err != nil {
		return doc, apperrors.NewPostingError(doc, fmt.Errorf("failed to load accounting schemas: %w", err))
	}
	if len(schemas) == 0 {
		return doc, apperrors.NewPostingError(doc, nil).
			WithDetail(fmt.Sprintf("no accounting schemas configured for client %d", doc.ClientID)).
			WithPreservePostedStatus()
	}
	if doc.ClientID != schemas[0].ClientID {
		return doc, apperrors.NewPostingError(doc, nil).
			WithDetail(fmt.Sprintf("client conflict - document=%d, schema=%d", doc.ClientID, schemas[0].ClientID)).
			WithPreservePostedStatus()
	}

	// Repost replaces prior facts; posting an already posted document without
	// repost is refused outright.
	if repost {
		if doc.IsPosted() && !s.periodSvc.IsPeriodOpen(ctx, doc) {
			return doc, apperrors.NewPostingError(doc, nil).
				WithStatus(domain.PostingStatusPeriodClosed).
				WithPreservePostedStatus()
		}
		if _, err := s.factRepo.DeleteFactsForDocument(ctx, tx, ref); err != nil {
			return doc, apperrors.NewPostingError(doc, fmt.Errorf("failed to delete previous facts: %w", err))
		}
	} else if doc.IsPosted() {
		return doc, apperrors.NewPostingError(doc, fmt.Errorf("%w: AlreadyPosted", apperrors.ErrConflict)).
			WithPreservePostedStatus()
	}

	// Balance one fact set per accounting schema; schemas excluded by org
	// restriction are skipped, not failed.
	var facts []*domain.Fact
	for i := range schemas {
		schema := &schemas[i]
		if schema.SkipsDocument(doc) {
			continue
		}
		schemaFacts, perr := s.postSchema(ctx, doc, schema)
		if perr != nil {
			return doc, perr
		}
		facts = append(facts, schemaFacts...)
	}

	for _, listener := range s.listeners {
		listener.BeforePost(ctx, doc)
	}

	for _, fact := range facts {
		if err := s.factRepo.SaveFact(ctx, tx, fact); err != nil {
			return doc, apperrors.NewPostingError(doc, fmt.Errorf("failed to save fact %s: %w", fact.FactID, err))
		}
	}

	for _, listener := range s.listeners {
		listener.AfterPost(ctx, doc)
	}

	// Document-type-specific post processing, default no-op.
	if generator, ok := s.registry.ForTable(ref.TableName); ok {
		if afterPoster, ok := generator.(portssvc.AfterPoster); ok {
			if err := afterPoster.AfterPost(ctx, doc); err != nil {
				return doc, apperrors.NewPostingError(doc, fmt.Errorf("after-post processing failed: %w", err))
			}
		}
	}

	for _, fact := range facts {
		fact.Dispose()
	}

	return doc, nil
}

// postSchema runs the per-schema balancing pipeline: the three rejection
// gates, fact generation and the per-fact check-fix-recheck passes.
func (s *postingService) postSchema(ctx context.Context, doc *domain.Document, schema *domain.AcctSchema) ([]*domain.Fact, *apperrors.PostingError) {
	// Gate 1: source balance, unless the schema tolerates suspense balancing.
	// Multi-currency documents are source balanced by definition.
	if !schema.GL.SuspenseBalancing && !doc.IsSourceBalanced() {
		return nil, apperrors.NewPostingError(doc, nil).
			WithStatus(domain.PostingStatusNotBalanced).
			WithSchema(schema)
	}

	// Gate 2: every document currency must convert to the schema currency.
	if err := s.convertSvc.CheckConvertible(ctx, doc, schema); err != nil {
		perr := apperrors.NewPostingError(doc, err).WithSchema(schema)
		if errors.Is(err, ErrNotConvertible) {
			perr.WithStatus(domain.PostingStatusNotConvertible)
		}
		return nil, perr
	}

	// Gate 3: the accounting period must be open for this document type.
	if !s.periodSvc.IsPeriodOpen(ctx, doc) {
		return nil, apperrors.NewPostingError(doc, nil).
			WithStatus(domain.PostingStatusPeriodClosed).
			WithSchema(schema)
	}

	generator, ok := s.registry.ForTable(doc.Ref.TableName)
	if !ok {
		return nil, apperrors.NewPostingError(doc, nil).
			WithSchema(schema).
			WithDetail(fmt.Sprintf("no fact generator registered for table %s", doc.Ref.TableName))
	}

	facts, err := generator.CreateFacts(ctx, doc, schema)
	if err != nil {
		return nil, apperrors.NewPostingError(doc, err).WithSchema(schema)
	}
	if len(facts) == 0 {
		return nil, apperrors.NewPostingError(doc, nil).
			WithSchema(schema).
			WithDetail("No facts")
	}

	for _, fact := range facts {
		if fact == nil {
			return nil, apperrors.NewPostingError(doc, nil).
				WithSchema(schema).
				WithDetail("No fact")
		}

		if !fact.CheckAccounts() {
			return nil, apperrors.NewPostingError(doc, nil).
				WithStatus(domain.PostingStatusInvalidAccount).
				WithSchema(schema).
				WithFact(fact)
		}

		if s.distributor != nil {
			if err := s.distributor.Distribute(ctx, fact); err != nil {
				return nil, apperrors.NewPostingError(doc, err).
					WithSchema(schema).
					WithFact(fact).
					WithDetail("Fact distribution error: " + err.Error())
			}
		}

		// Balance source amounts.
		if !fact.IsSourceBalanced() {
			fact.BalanceSource()
			if !fact.IsSourceBalanced() {
				return nil, apperrors.NewPostingError(doc, nil).
					WithStatus(domain.PostingStatusNotBalanced).
					WithSchema(schema).
					WithFact(fact).
					WithDetail("Source amounts not balanced")
			}
		}

		// Balance reporting segments.
		if !fact.IsSegmentBalanced() {
			fact.BalanceSegments()
			if !fact.IsSegmentBalanced() {
				return nil, apperrors.NewPostingError(doc, nil).
					WithStatus(domain.PostingStatusNotBalanced).
					WithSchema(schema).
					WithFact(fact).
					WithDetail("Segment not balanced")
			}
		}

		// Convert source amounts to the schema currency, then balance the
		// accounted side.
		if perr := s.convertFact(ctx, doc, schema, fact); perr != nil {
			return nil, perr
		}
		if !fact.IsAcctBalanced() {
			fact.BalanceAccounting()
			if !fact.IsAcctBalanced() {
				return nil, apperrors.NewPostingError(doc, nil).
					WithStatus(domain.PostingStatusNotBalanced).
					WithSchema(schema).
					WithFact(fact).
					WithDetail("Accountable amounts not balanced")
			}
		}
	}

	return facts, nil
}

// convertFact derives accounted amounts for every line, rounding to the
// schema's standard precision. Same-currency lines convert at rate one.
func (s *postingService) convertFact(ctx context.Context, doc *domain.Document, schema *domain.AcctSchema, fact *domain.Fact) *apperrors.PostingError {
	one := decimal.NewFromInt(1)
	for _, line := range fact.Lines() {
		rate := one
		if line.CurrencyCode != "" && line.CurrencyCode != schema.CurrencyCode {
			exchangeRate, err := s.rateRepo.FindRate(ctx, line.CurrencyCode, schema.CurrencyCode, doc.AcctDate, doc.ConversionTypeID, doc.ClientID, doc.OrgID)
			if err != nil {
				perr := apperrors.NewPostingError(doc, err).WithSchema(schema).WithFact(fact)
				if errors.Is(err, apperrors.ErrNotFound) {
					perr.WithStatus(domain.PostingStatusNotConvertible).
						WithDetail(fmt.Sprintf("no rate %s -> %s", line.CurrencyCode, schema.CurrencyCode))
				}
				return perr
			}
			rate = exchangeRate.Rate
		}
		line.Convert(rate, schema.StdPrecision)
	}
	return nil
}

// postDependents posts documents that depend on the freshly posted one. The
// candidate set is capped: a set of maxDependentDocuments or more is treated
// as an upstream filtering defect and skipped entirely.
func (s *postingService) postDependents(ctx context.Context, doc *domain.Document) {
	logger := middleware.GetLoggerFromCtx(ctx)

	generator, ok := s.registry.ForTable(doc.Ref.TableName)
	if !ok {
		return
	}
	provider, ok := generator.(portssvc.DependentDocumentsProvider)
	if !ok {
		return
	}

	dependents, err := provider.DependentDocuments(ctx, doc)
	if err != nil {
		logger.Warn("Failed to collect dependent documents. Skipped", slog.String("error", err.Error()))
		return
	}
	if len(dependents) == 0 {
		return
	}
	if len(dependents) >= maxDependentDocuments {
		logger.Warn("Too many dependent documents to post; this looks like a filtering defect. Skipping the cascade",
			slog.Int("count", len(dependents)),
			slog.String("table", doc.Ref.TableName),
			slog.Int64("record_id", doc.Ref.RecordID),
		)
		return
	}

	for _, ref := range dependents {
		if perr := s.Post(ctx, ref, false, false); perr != nil {
			logger.Warn("Failed to post dependent document",
				slog.String("table", ref.TableName),
				slog.Int64("record_id", ref.RecordID),
				slog.String("error", perr.Error()),
			)
		}
	}
}
