package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"regexp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/glsuite/gl_posting_app/internal/adapters/database/pgsql"
	"github.com/glsuite/gl_posting_app/internal/core/services"
	"github.com/glsuite/gl_posting_app/internal/core/services/generators"
	"github.com/glsuite/gl_posting_app/internal/handlers"
	"github.com/glsuite/gl_posting_app/internal/middleware"
	"github.com/glsuite/gl_posting_app/pkg/config"
	"github.com/glsuite/gl_posting_app/pkg/database"
)

var tableNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("tablename", func(fl validator.FieldLevel) bool {
			return tableNamePattern.MatchString(fl.Field().String())
		}); err != nil {
			logger.Error("Failed to register tablename validation", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	deps := buildDependencies(dbPool, cfg)
	handlers.RegisterRoutes(r, cfg, deps)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildDependencies wires the repositories, the domain services and the fact
// generators together.
func buildDependencies(dbPool *pgxpool.Pool, cfg *config.Config) handlers.Dependencies {
	docRepo := pgsql.NewPgxDocumentRepository(dbPool)
	factRepo := pgsql.NewPgxFactRepository(dbPool)
	schemaRepo := pgsql.NewPgxAcctSchemaRepository(dbPool)
	rateRepo := pgsql.NewPgxExchangeRateRepository(dbPool)
	periodRepo := pgsql.NewPgxPeriodRepository(dbPool)
	mappingRepo := pgsql.NewPgxAccountMappingRepository(dbPool)
	noteRepo := pgsql.NewPgxNoteRepository(dbPool)

	resolver := services.NewAccountResolver(mappingRepo)

	registry := services.NewGeneratorRegistry()
	registry.Register(generators.TableInvoice, generators.NewInvoiceGenerator(resolver))
	registry.Register(generators.TablePayment, generators.NewPaymentGenerator(resolver))

	postingService := services.NewPostingService(
		docRepo,
		factRepo,
		schemaRepo,
		rateRepo,
		factRepo, // transaction manager
		registry,
		services.NewPeriodService(periodRepo),
		services.NewConvertibilityService(rateRepo),
		services.NewNoteService(noteRepo),
		nil, // no fact distributor configured
		nil, // no fact listeners configured
		services.PostingServiceConfig{CreateNoteOnError: cfg.CreateNoteOnError},
	)

	return handlers.Dependencies{
		Posting: postingService,
		Facts:   factRepo,
	}
}

// runMigrations applies all pending database migrations over a temporary
// database/sql connection using the pgx stdlib driver.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	sourceErr, dbErr := m.Close()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
