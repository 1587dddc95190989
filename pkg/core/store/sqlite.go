package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sqliteTimeLayout is fixed width so stored timestamps sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analytics (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	country_code TEXT,
	business_type TEXT,
	scenario_id TEXT,
	calculation_data TEXT,
	session_id TEXT,
	ip_address TEXT,
	user_agent TEXT,
	geo_country TEXT
);
CREATE TABLE IF NOT EXISTS email_submissions (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	email TEXT,
	name TEXT,
	company TEXT,
	calculation_id TEXT,
	country_code TEXT,
	business_type TEXT,
	roi_result REAL,
	gdpr_consent BOOLEAN,
	ip_address TEXT
);
CREATE TABLE IF NOT EXISTS report_exports (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	calculation_id TEXT,
	export_type TEXT,
	file_size INTEGER,
	session_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_analytics_timestamp ON analytics(timestamp);
`

// SQLiteAnalyticsRepo stores analytics in a local SQLite file.
type SQLiteAnalyticsRepo struct {
	conn *sql.DB
	now  func() time.Time
	log  zerolog.Logger
}

// NewSQLiteAnalyticsRepo opens (creating if needed) the database at dbPath
// and bootstraps the schema. ":memory:" opens a private in-memory database.
func NewSQLiteAnalyticsRepo(dbPath string, log zerolog.Logger) (*SQLiteAnalyticsRepo, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// An in-memory database lives and dies with its connection.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
	}

	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create analytics schema: %w", err)
	}

	return &SQLiteAnalyticsRepo{
		conn: conn,
		now:  func() time.Time { return time.Now().UTC() },
		log:  log.With().Str("component", "analytics_sqlite").Logger(),
	}, nil
}

// Close closes the database connection
func (r *SQLiteAnalyticsRepo) Close() error {
	return r.conn.Close()
}

func (r *SQLiteAnalyticsRepo) stamp(id *string, ts *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if ts.IsZero() {
		*ts = r.now()
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LogCalculation records one calculation.
func (r *SQLiteAnalyticsRepo) LogCalculation(ctx context.Context, e CalculationEvent) error {
	r.stamp(&e.ID, &e.Timestamp)
	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO analytics (id, timestamp, country_code, business_type, scenario_id,
			calculation_data, session_id, ip_address, user_agent, geo_country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, formatTime(e.Timestamp), e.CountryCode, e.BusinessType, e.ScenarioID,
		e.CalculationData, e.SessionID, e.IPAddress, e.UserAgent, e.GeoCountry)
	if err != nil {
		return fmt.Errorf("failed to log calculation: %w", err)
	}
	return nil
}

// LogEmailSubmission records one emailed report.
func (r *SQLiteAnalyticsRepo) LogEmailSubmission(ctx context.Context, s EmailSubmission) error {
	r.stamp(&s.ID, &s.Timestamp)
	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO email_submissions (id, timestamp, email, name, company, calculation_id,
			country_code, business_type, roi_result, gdpr_consent, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, formatTime(s.Timestamp), s.Email, s.Name, s.Company, s.CalculationID,
		s.CountryCode, s.BusinessType, s.ROIResult, s.GDPRConsent, s.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to log email submission: %w", err)
	}
	return nil
}

// LogExport records one exported report.
func (r *SQLiteAnalyticsRepo) LogExport(ctx context.Context, e ExportEvent) error {
	r.stamp(&e.ID, &e.Timestamp)
	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO report_exports (id, timestamp, calculation_id, export_type, file_size, session_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, formatTime(e.Timestamp), e.CalculationID, e.ExportType, e.FileSize, e.SessionID)
	if err != nil {
		return fmt.Errorf("failed to log export: %w", err)
	}
	return nil
}

// Summary aggregates usage counts.
func (r *SQLiteAnalyticsRepo) Summary(ctx context.Context) (AnalyticsSummary, error) {
	var s AnalyticsSummary

	counts := []struct {
		query string
		args  []interface{}
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM analytics`, nil, &s.TotalCalculations},
		{`SELECT COUNT(*) FROM email_submissions`, nil, &s.TotalEmailSubmission},
		{`SELECT COUNT(*) FROM report_exports`, nil, &s.TotalExports},
		{`SELECT COUNT(*) FROM analytics WHERE timestamp >= ?`, []interface{}{formatTime(r.now().Add(-recentWindow))}, &s.RecentCalculations},
	}
	for _, c := range counts {
		if err := r.conn.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return AnalyticsSummary{}, fmt.Errorf("failed to count analytics: %w", err)
		}
	}

	var err error
	if s.TopCountries, err = r.topBuckets(ctx, "country_code"); err != nil {
		return AnalyticsSummary{}, err
	}
	if s.TopBusinessTypes, err = r.topBuckets(ctx, "business_type"); err != nil {
		return AnalyticsSummary{}, err
	}
	return s, nil
}

// topBuckets groups analytics by a fixed column name.
func (r *SQLiteAnalyticsRepo) topBuckets(ctx context.Context, column string) ([]CountBucket, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(%[1]s, ''), COUNT(*) AS n FROM analytics
		GROUP BY %[1]s ORDER BY n DESC, %[1]s ASC LIMIT ?`, column)
	rows, err := r.conn.QueryContext(ctx, query, topBucketLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to group analytics by %s: %w", column, err)
	}
	defer rows.Close()

	buckets := []CountBucket{}
	for rows.Next() {
		var b CountBucket
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// Submissions lists the most recent email submissions.
func (r *SQLiteAnalyticsRepo) Submissions(ctx context.Context, limit int) ([]EmailSubmission, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT id, timestamp, email, name, company, calculation_id, country_code,
			business_type, roi_result, gdpr_consent, ip_address
		FROM email_submissions ORDER BY timestamp DESC LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	out := []EmailSubmission{}
	for rows.Next() {
		var s EmailSubmission
		var ts string
		if err := rows.Scan(&s.ID, &ts, &s.Email, &s.Name, &s.Company, &s.CalculationID,
			&s.CountryCode, &s.BusinessType, &s.ROIResult, &s.GDPRConsent, &s.IPAddress); err != nil {
			return nil, err
		}
		s.Timestamp = parseTime(ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Exports lists the most recent report exports.
func (r *SQLiteAnalyticsRepo) Exports(ctx context.Context, limit int) ([]ExportEvent, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT id, timestamp, calculation_id, export_type, file_size, session_id
		FROM report_exports ORDER BY timestamp DESC LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	out := []ExportEvent{}
	for rows.Next() {
		var e ExportEvent
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.CalculationID, &e.ExportType, &e.FileSize, &e.SessionID); err != nil {
			return nil, err
		}
		e.Timestamp = parseTime(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear deletes every row of the given kind.
func (r *SQLiteAnalyticsRepo) Clear(ctx context.Context, kind DataKind) (int64, error) {
	return r.deleteWhere(ctx, tablesFor(kind), "", nil)
}

// PurgeOlderThan deletes rows older than cutoff from every table.
func (r *SQLiteAnalyticsRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(ctx, tablesFor(KindAll), "WHERE timestamp < ?", []interface{}{formatTime(cutoff)})
}

func (r *SQLiteAnalyticsRepo) deleteWhere(ctx context.Context, tables []string, where string, args []interface{}) (int64, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for _, table := range tables {
		res, err := tx.ExecContext(ctx, deleteStatement(table, where), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}

	r.log.Info().Strs("tables", tables).Int64("rows", total).Msg("analytics rows deleted")
	return total, nil
}
