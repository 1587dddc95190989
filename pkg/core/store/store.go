package store

import (
	"context"
	"strings"
	"time"

	"amplify_roi/pkg/models"
)

// DataKind selects which analytics table an admin clear applies to.
type DataKind string

const (
	KindAnalytics   DataKind = "analytics"
	KindSubmissions DataKind = "submissions"
	KindExports     DataKind = "exports"
	KindAll         DataKind = "all"
)

// ParseDataKind validates an admin-supplied data type.
func ParseDataKind(s string) (DataKind, error) {
	switch k := DataKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindAnalytics, KindSubmissions, KindExports, KindAll:
		return k, nil
	default:
		return "", models.InvalidInputf("invalid data type %q", s)
	}
}

// CalculationEvent is one logged ROI calculation.
type CalculationEvent struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	CountryCode     string    `json:"country_code"`
	BusinessType    string    `json:"business_type"`
	ScenarioID      string    `json:"scenario_id"`
	CalculationData string    `json:"calculation_data"` // request JSON
	SessionID       string    `json:"session_id"`
	IPAddress       string    `json:"ip_address"`
	UserAgent       string    `json:"user_agent"`
	GeoCountry      string    `json:"geo_country,omitempty"`
}

// EmailSubmission is one report sent by email.
type EmailSubmission struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Company       string    `json:"company"`
	CalculationID string    `json:"calculation_id"`
	CountryCode   string    `json:"country_code"`
	BusinessType  string    `json:"business_type"`
	ROIResult     float64   `json:"roi_result"`
	GDPRConsent   bool      `json:"gdpr_consent"`
	IPAddress     string    `json:"ip_address"`
}

// ExportEvent is one exported report.
type ExportEvent struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	CalculationID string    `json:"calculation_id"`
	ExportType    string    `json:"export_type"`
	FileSize      int64     `json:"file_size"`
	SessionID     string    `json:"session_id"`
}

// CountBucket is a grouped count.
type CountBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// AnalyticsSummary is the admin overview of usage.
type AnalyticsSummary struct {
	TotalCalculations    int64         `json:"total_calculations"`
	TotalEmailSubmission int64         `json:"total_email_submissions"`
	TotalExports         int64         `json:"total_exports"`
	RecentCalculations   int64         `json:"calculations_last_30_days"`
	TopCountries         []CountBucket `json:"top_countries"`
	TopBusinessTypes     []CountBucket `json:"top_business_types"`
}

// AnalyticsRepository persists usage analytics. Implementations must be safe
// for concurrent use.
type AnalyticsRepository interface {
	LogCalculation(ctx context.Context, e CalculationEvent) error
	LogEmailSubmission(ctx context.Context, s EmailSubmission) error
	LogExport(ctx context.Context, e ExportEvent) error

	Summary(ctx context.Context) (AnalyticsSummary, error)
	Submissions(ctx context.Context, limit int) ([]EmailSubmission, error)
	Exports(ctx context.Context, limit int) ([]ExportEvent, error)

	// Clear deletes rows of the given kind and reports how many were removed.
	Clear(ctx context.Context, kind DataKind) (int64, error)
	// PurgeOlderThan deletes rows of every kind older than cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

const (
	defaultListLimit = 100
	topBucketLimit   = 5
	recentWindow     = 30 * 24 * time.Hour
)

func listLimit(n int) int {
	if n <= 0 || n > 1000 {
		return defaultListLimit
	}
	return n
}

// deleteStatement builds the DELETE for one table. where is either empty or
// a full "WHERE ..." clause in the driver's placeholder syntax.
func deleteStatement(table, where string) string {
	if where == "" {
		return "DELETE FROM " + table
	}
	return "DELETE FROM " + table + " " + where
}

// tablesFor maps a kind to the tables it covers.
func tablesFor(kind DataKind) []string {
	switch kind {
	case KindAnalytics:
		return []string{"analytics"}
	case KindSubmissions:
		return []string{"email_submissions"}
	case KindExports:
		return []string{"report_exports"}
	default:
		return []string{"analytics", "email_submissions", "report_exports"}
	}
}
