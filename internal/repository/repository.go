package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// repositoryImpl is the concrete implementation of Repository. The backend
// difference is confined to the sub-repositories it is wired with.
type repositoryImpl struct {
	db          *sqlx.DB
	offers      OfferRepository
	leads       LeadRepository
	messageLogs MessageLogRepository
	sequences   SequenceRepository
	errorLogs   ErrorLogRepository
	settings    SettingsRepository
	rateLimits  RateLimitRepository
	analytics   AnalyticsRepository
}

// New creates a repository for the given driver ("postgres" or "sqlite").
func New(db *sqlx.DB, driver string) (Repository, error) {
	switch driver {
	case "postgres":
		return NewPostgres(db), nil
	case "sqlite":
		return NewSQLite(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewPostgres creates a repository backed by PostgreSQL.
func NewPostgres(db *sqlx.DB) Repository {
	return &repositoryImpl{
		db:          db,
		offers:      &pgOfferRepository{db: db},
		leads:       &pgLeadRepository{db: db},
		messageLogs: &pgMessageLogRepository{db: db},
		sequences:   &pgSequenceRepository{db: db},
		errorLogs:   &pgErrorLogRepository{db: db},
		settings:    &pgSettingsRepository{db: db},
		rateLimits:  &pgRateLimitRepository{db: db},
		analytics:   &pgAnalyticsRepository{db: db},
	}
}

// NewSQLite creates a repository backed by SQLite.
func NewSQLite(db *sqlx.DB) Repository {
	return &repositoryImpl{
		db:          db,
		offers:      &sqliteOfferRepository{db: db},
		leads:       &sqliteLeadRepository{db: db},
		messageLogs: &sqliteMessageLogRepository{db: db},
		sequences:   &sqliteSequenceRepository{db: db},
		errorLogs:   &sqliteErrorLogRepository{db: db},
		settings:    &sqliteSettingsRepository{db: db},
		rateLimits:  &sqliteRateLimitRepository{db: db},
		analytics:   &sqliteAnalyticsRepository{db: db},
	}
}

func (r *repositoryImpl) Offers() OfferRepository           { return r.offers }
func (r *repositoryImpl) Leads() LeadRepository             { return r.leads }
func (r *repositoryImpl) MessageLogs() MessageLogRepository { return r.messageLogs }
func (r *repositoryImpl) Sequences() SequenceRepository     { return r.sequences }
func (r *repositoryImpl) ErrorLogs() ErrorLogRepository     { return r.errorLogs }
func (r *repositoryImpl) Settings() SettingsRepository      { return r.settings }
func (r *repositoryImpl) RateLimits() RateLimitRepository   { return r.rateLimits }
func (r *repositoryImpl) Analytics() AnalyticsRepository    { return r.analytics }

// Ping checks if the database connection is healthy.
func (r *repositoryImpl) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return r.db.PingContext(ctx)
}
