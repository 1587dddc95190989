package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS analytics (
	id TEXT PRIMARY KEY,
	timestamp TIMESTAMPTZ NOT NULL,
	country_code TEXT,
	business_type TEXT,
	scenario_id TEXT,
	calculation_data JSONB,
	session_id TEXT,
	ip_address TEXT,
	user_agent TEXT,
	geo_country TEXT
);
CREATE TABLE IF NOT EXISTS email_submissions (
	id TEXT PRIMARY KEY,
	timestamp TIMESTAMPTZ NOT NULL,
	email TEXT,
	name TEXT,
	company TEXT,
	calculation_id TEXT,
	country_code TEXT,
	business_type TEXT,
	roi_result DOUBLE PRECISION,
	gdpr_consent BOOLEAN,
	ip_address TEXT
);
CREATE TABLE IF NOT EXISTS report_exports (
	id TEXT PRIMARY KEY,
	timestamp TIMESTAMPTZ NOT NULL,
	calculation_id TEXT,
	export_type TEXT,
	file_size BIGINT,
	session_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_analytics_timestamp ON analytics(timestamp);
`

// PostgresAnalyticsRepo stores analytics in Postgres. The request payload is
// kept as JSONB.
type PostgresAnalyticsRepo struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresAnalyticsRepo wraps an open pool.
func NewPostgresAnalyticsRepo(pool *pgxpool.Pool, log zerolog.Logger) *PostgresAnalyticsRepo {
	return &PostgresAnalyticsRepo{
		pool: pool,
		log:  log.With().Str("component", "analytics_postgres").Logger(),
	}
}

// EnsureSchema creates the analytics tables when missing.
func (r *PostgresAnalyticsRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create analytics schema: %w", err)
	}
	return nil
}

// Close closes the pool.
func (r *PostgresAnalyticsRepo) Close() error {
	r.pool.Close()
	return nil
}

func stampRow(id *string, ts *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if ts.IsZero() {
		*ts = time.Now().UTC()
	}
}

// LogCalculation records one calculation.
func (r *PostgresAnalyticsRepo) LogCalculation(ctx context.Context, e CalculationEvent) error {
	stampRow(&e.ID, &e.Timestamp)
	var payload interface{}
	if e.CalculationData != "" {
		payload = e.CalculationData
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO analytics (id, timestamp, country_code, business_type, scenario_id,
			calculation_data, session_id, ip_address, user_agent, geo_country)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)`,
		e.ID, e.Timestamp, e.CountryCode, e.BusinessType, e.ScenarioID,
		payload, e.SessionID, e.IPAddress, e.UserAgent, e.GeoCountry)
	if err != nil {
		return fmt.Errorf("failed to log calculation: %w", err)
	}
	return nil
}

// LogEmailSubmission records one emailed report.
func (r *PostgresAnalyticsRepo) LogEmailSubmission(ctx context.Context, s EmailSubmission) error {
	stampRow(&s.ID, &s.Timestamp)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO email_submissions (id, timestamp, email, name, company, calculation_id,
			country_code, business_type, roi_result, gdpr_consent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Timestamp, s.Email, s.Name, s.Company, s.CalculationID,
		s.CountryCode, s.BusinessType, s.ROIResult, s.GDPRConsent, s.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to log email submission: %w", err)
	}
	return nil
}

// LogExport records one exported report.
func (r *PostgresAnalyticsRepo) LogExport(ctx context.Context, e ExportEvent) error {
	stampRow(&e.ID, &e.Timestamp)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO report_exports (id, timestamp, calculation_id, export_type, file_size, session_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Timestamp, e.CalculationID, e.ExportType, e.FileSize, e.SessionID)
	if err != nil {
		return fmt.Errorf("failed to log export: %w", err)
	}
	return nil
}

// Summary aggregates usage counts.
func (r *PostgresAnalyticsRepo) Summary(ctx context.Context) (AnalyticsSummary, error) {
	var s AnalyticsSummary
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM analytics),
			(SELECT COUNT(*) FROM email_submissions),
			(SELECT COUNT(*) FROM report_exports),
			(SELECT COUNT(*) FROM analytics WHERE timestamp >= $1)`,
		time.Now().UTC().Add(-recentWindow),
	).Scan(&s.TotalCalculations, &s.TotalEmailSubmission, &s.TotalExports, &s.RecentCalculations)
	if err != nil {
		return AnalyticsSummary{}, fmt.Errorf("failed to count analytics: %w", err)
	}

	if s.TopCountries, err = r.topBuckets(ctx, "country_code"); err != nil {
		return AnalyticsSummary{}, err
	}
	if s.TopBusinessTypes, err = r.topBuckets(ctx, "business_type"); err != nil {
		return AnalyticsSummary{}, err
	}
	return s, nil
}

func (r *PostgresAnalyticsRepo) topBuckets(ctx context.Context, column string) ([]CountBucket, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(%[1]s, ''), COUNT(*) AS n FROM analytics
		GROUP BY %[1]s ORDER BY n DESC, %[1]s ASC LIMIT $1`, column)
	rows, err := r.pool.Query(ctx, query, topBucketLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to group analytics by %s: %w", column, err)
	}
	buckets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (CountBucket, error) {
		var b CountBucket
		err := row.Scan(&b.Key, &b.Count)
		return b, err
	})
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

// Submissions lists the most recent email submissions.
func (r *PostgresAnalyticsRepo) Submissions(ctx context.Context, limit int) ([]EmailSubmission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, timestamp, email, name, company, calculation_id, country_code,
			business_type, roi_result, gdpr_consent, ip_address
		FROM email_submissions ORDER BY timestamp DESC LIMIT $1`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (EmailSubmission, error) {
		var s EmailSubmission
		err := row.Scan(&s.ID, &s.Timestamp, &s.Email, &s.Name, &s.Company, &s.CalculationID,
			&s.CountryCode, &s.BusinessType, &s.ROIResult, &s.GDPRConsent, &s.IPAddress)
		return s, err
	})
}

// Exports lists the most recent report exports.
func (r *PostgresAnalyticsRepo) Exports(ctx context.Context, limit int) ([]ExportEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, timestamp, calculation_id, export_type, file_size, session_id
		FROM report_exports ORDER BY timestamp DESC LIMIT $1`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ExportEvent, error) {
		var e ExportEvent
		err := row.Scan(&e.ID, &e.Timestamp, &e.CalculationID, &e.ExportType, &e.FileSize, &e.SessionID)
		return e, err
	})
}

// Clear deletes every row of the given kind.
func (r *PostgresAnalyticsRepo) Clear(ctx context.Context, kind DataKind) (int64, error) {
	return r.deleteWhere(ctx, tablesFor(kind), "", nil)
}

// PurgeOlderThan deletes rows older than cutoff from every table.
func (r *PostgresAnalyticsRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(ctx, tablesFor(KindAll), "WHERE timestamp < $1", []interface{}{cutoff})
}

func (r *PostgresAnalyticsRepo) deleteWhere(ctx context.Context, tables []string, where string, args []interface{}) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int64
	for _, table := range tables {
		tag, err := tx.Exec(ctx, deleteStatement(table, where), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}

	r.log.Info().Strs("tables", tables).Int64("rows", total).Msg("analytics rows deleted")
	return total, nil
}
