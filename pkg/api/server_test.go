package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"amplify_roi/pkg/core/currency"
	"amplify_roi/pkg/core/notify"
	"amplify_roi/pkg/core/pipeline"
	"amplify_roi/pkg/core/refdata"
	"amplify_roi/pkg/core/store"
	"amplify_roi/pkg/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	bundledData = "../../data"
	adminToken  = "s3cret"
)

// ===== MOCKS =====

type mockAnalytics struct {
	mock.Mock
}

func (m *mockAnalytics) LogCalculation(ctx context.Context, e store.CalculationEvent) error {
	return m.Called(e).Error(0)
}

func (m *mockAnalytics) LogEmailSubmission(ctx context.Context, s store.EmailSubmission) error {
	return m.Called(s).Error(0)
}

func (m *mockAnalytics) LogExport(ctx context.Context, e store.ExportEvent) error {
	return m.Called(e).Error(0)
}

func (m *mockAnalytics) Summary(ctx context.Context) (store.AnalyticsSummary, error) {
	args := m.Called()
	return args.Get(0).(store.AnalyticsSummary), args.Error(1)
}

func (m *mockAnalytics) Submissions(ctx context.Context, limit int) ([]store.EmailSubmission, error) {
	args := m.Called(limit)
	return args.Get(0).([]store.EmailSubmission), args.Error(1)
}

func (m *mockAnalytics) Exports(ctx context.Context, limit int) ([]store.ExportEvent, error) {
	args := m.Called(limit)
	return args.Get(0).([]store.ExportEvent), args.Error(1)
}

func (m *mockAnalytics) Clear(ctx context.Context, kind store.DataKind) (int64, error) {
	args := m.Called(kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAnalytics) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAnalytics) Close() error { return nil }

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendReport(ctx context.Context, e notify.ReportEmail) (string, error) {
	args := m.Called(e)
	return args.String(0), args.Error(1)
}

type stubGeo struct{}

func (stubGeo) CountryISO(string) string { return "DE" }

// ===== HELPERS =====

type fixture struct {
	server    *Server
	analytics *mockAnalytics
	mailer    *mockMailer
	cache     *store.ResultCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := refdata.LoadFromDirectory(bundledData)
	require.NoError(t, err)

	formatter := currency.NewFormatter(reg.Currencies()...)

	calc := pipeline.NewCalculator(formatter)
	f := &fixture{
		analytics: new(mockAnalytics),
		mailer:    new(mockMailer),
		cache:     store.NewResultCache(context.Background(), store.RedisOptions{}, time.Minute, zerolog.Nop()),
	}
	f.server = New(Config{
		Version:    "test",
		AdminToken: adminToken,
		Log:        zerolog.Nop(),
		Registry:   reg,
		Calculator: calc,
		Formatter:  formatter,
		Analytics:  f.analytics,
		Cache:      f.cache,
		CacheMode:  f.cache.Mode,
		Geo:        stubGeo{},
		Mailer:     f.mailer,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const calcBody = `{
	"country": "US",
	"business_type": "ecommerce",
	"scenario": "subscription-box",
	"monthly_revenue": 50000,
	"initial_investment": 100000,
	"timeframe_months": 24
}`

// ===== REFERENCE =====

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, float64(25), body["countries"])
	assert.Equal(t, "in-memory", body["cache_mode"])
}

func TestReferenceEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/business-types", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var types []models.BusinessType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	assert.Len(t, types, 5)

	rec = f.do(t, http.MethodGet, "/api/business-types/saas", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/business-types/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Business type not found", decode(t, rec)["detail"])

	rec = f.do(t, http.MethodGet, "/api/countries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var countries []models.CountryData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &countries))
	assert.Len(t, countries, 25)

	rec = f.do(t, http.MethodGet, "/api/countries/gb", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "United Kingdom", decode(t, rec)["name"])

	rec = f.do(t, http.MethodGet, "/api/countries/XX", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchScenarios(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/scenarios/search?query=subscription", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Greater(t, body["total"].(float64), float64(0))

	rec = f.do(t, http.MethodGet, "/api/scenarios/search?query=subscription&category=nothing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["total"])

	rec = f.do(t, http.MethodGet, "/api/scenarios/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormatCurrency(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/currency/format?amount=1234.5&currency_code=usd", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "$1,234.50", body["formatted"])
	assert.Equal(t, "USD", body["currency"])

	for _, amount := range []string{"abc", "NaN", "Inf", "-Inf", "1e400"} {
		rec = f.do(t, http.MethodGet, "/api/currency/format?amount="+amount+"&currency_code=USD", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, amount)
	}
}

// ===== CALCULATIONS =====

func TestCalculate_Success(t *testing.T) {
	f := newFixture(t)
	f.analytics.On("LogCalculation", mock.MatchedBy(func(e store.CalculationEvent) bool {
		return e.CountryCode == "US" && e.ScenarioID == "subscription-box" &&
			e.SessionID == "sess-1" && e.GeoCountry == "DE" &&
			strings.Contains(e.CalculationData, `"monthly_revenue":50000`)
	})).Return(nil).Once()

	rec := f.do(t, http.MethodPost, "/api/calculate-roi", calcBody, "X-Session-ID", "sess-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		CalculationID      string            `json:"calculation_id"`
		CurrencyCode       string            `json:"currency_code"`
		MonthlyProjections []json.RawMessage `json:"monthly_projections"`
		Metrics            map[string]interface{}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.CalculationID)
	assert.Equal(t, "USD", result.CurrencyCode)
	assert.Len(t, result.MonthlyProjections, 24)
	assert.Contains(t, result.Metrics, "irr")
	f.analytics.AssertExpectations(t)
}

func TestCalculate_LenientBody(t *testing.T) {
	f := newFixture(t)
	f.analytics.On("LogCalculation", mock.Anything).Return(nil)

	// unquoted keys and a trailing comma
	body := `{country: "US", business_type: "saas", scenario: "micro-saas", monthly_revenue: 30000, initial_investment: 50000,}`
	rec := f.do(t, http.MethodPost, "/api/calculate-roi", body)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCalculate_ErrorMapping(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `not json at all {{{`, http.StatusBadRequest},
		{"empty", ``, http.StatusBadRequest},
		{"unknown field", `{"country":"US","business_type":"ecommerce","scenario":"subscription-box","monthly_revenue":1,"revenu":2}`, http.StatusBadRequest},
		{"unknown country", `{"country":"XX","business_type":"ecommerce","scenario":"subscription-box","monthly_revenue":1000}`, http.StatusBadRequest},
		{"unknown scenario", `{"country":"US","business_type":"ecommerce","scenario":"nope","monthly_revenue":1000}`, http.StatusBadRequest},
		{"negative revenue", `{"country":"US","business_type":"ecommerce","scenario":"subscription-box","monthly_revenue":-5}`, http.StatusBadRequest},
		{"timeframe", `{"country":"US","business_type":"ecommerce","scenario":"subscription-box","monthly_revenue":1000,"timeframe_months":121}`, http.StatusBadRequest},
		{"overflowing revenue", `{"country":"US","business_type":"ecommerce","scenario":"subscription-box","monthly_revenue":1e308,"timeframe_months":3}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/calculate-roi", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode(t, rec)["detail"])
		})
	}
	f.analytics.AssertNotCalled(t, "LogCalculation", mock.Anything)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(models.InvalidInputf("x")))
	assert.Equal(t, http.StatusBadRequest, statusFor(models.ErrNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(models.MissingReferencef("tax")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestCalculate_CachedResultGetsFreshID(t *testing.T) {
	f := newFixture(t)
	f.analytics.On("LogCalculation", mock.Anything).Return(nil)

	first := decode(t, f.do(t, http.MethodPost, "/api/calculate-roi", calcBody))
	second := decode(t, f.do(t, http.MethodPost, "/api/calculate-roi", calcBody))

	assert.NotEqual(t, first["calculation_id"], second["calculation_id"])
	assert.Equal(t, first["metrics"], second["metrics"])
	assert.Equal(t, first["insights"], second["insights"])
}

func TestCalculate_AnalyticsFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.analytics.On("LogCalculation", mock.Anything).Return(errors.New("disk full"))

	rec := f.do(t, http.MethodPost, "/api/calculate-roi", calcBody)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWhatIf(t *testing.T) {
	f := newFixture(t)
	f.analytics.On("LogCalculation", mock.Anything).Return(nil)

	body := `{"base_calculation": ` + calcBody + `, "variations": [
		{"label": "More revenue", "monthly_revenue": 60000},
		{"gross_margin": 1.5}
	]}`
	rec := f.do(t, http.MethodPost, "/api/what-if", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var parsed struct {
		Variations []struct {
			Label    string  `json:"label"`
			Error    string  `json:"error"`
			ROIDelta float64 `json:"roi_delta"`
		} `json:"variations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	require.Len(t, parsed.Variations, 2)
	assert.Equal(t, "More revenue", parsed.Variations[0].Label)
	assert.Greater(t, parsed.Variations[0].ROIDelta, 0.0)
	assert.Equal(t, "Scenario 2", parsed.Variations[1].Label)
	assert.NotEmpty(t, parsed.Variations[1].Error)
}

func TestWhatIf_TooManyVariations(t *testing.T) {
	f := newFixture(t)
	variations := strings.TrimSuffix(strings.Repeat(`{"monthly_revenue": 1000},`, maxVariations+1), ",")
	rec := f.do(t, http.MethodPost, "/api/what-if", `{"base_calculation": `+calcBody+`, "variations": [`+variations+`]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSensitivity(t *testing.T) {
	f := newFixture(t)

	body := strings.Replace(calcBody, `"timeframe_months": 24`, `"timeframe_months": 24, "delta": 0.2`, 1)
	rec := f.do(t, http.MethodPost, "/api/sensitivity", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep pipeline.SensitivityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 0.2, rep.Delta)
	assert.Len(t, rep.Drivers, 5)

	body = strings.Replace(calcBody, `"timeframe_months": 24`, `"delta": 1.5`, 1)
	rec = f.do(t, http.MethodPost, "/api/sensitivity", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ===== REPORTS =====

func TestExportReport(t *testing.T) {
	f := newFixture(t)
	f.analytics.On("LogExport", mock.MatchedBy(func(e store.ExportEvent) bool {
		return e.CalculationID == "calc-77" && e.ExportType == "html" && e.FileSize > 0
	})).Return(nil).Once()

	body := strings.Replace(calcBody, `"timeframe_months": 24`, `"timeframe_months": 24, "calculation_id": "calc-77"`, 1)
	rec := f.do(t, http.MethodPost, "/api/export-report", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "roi-report-calc-77.html")
	assert.Contains(t, rec.Body.String(), "<table")
	assert.Contains(t, rec.Body.String(), "calc-77")
	f.analytics.AssertExpectations(t)
}

func TestExportReport_Markdown(t *testing.T) {
	f := newFixture(t)
	f.analytics.On("LogExport", mock.Anything).Return(nil)

	body := strings.Replace(calcBody, `"timeframe_months": 24`, `"format": "markdown"`, 1)
	rec := f.do(t, http.MethodPost, "/api/export-report", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# ROI Analysis Report"))

	body = strings.Replace(calcBody, `"timeframe_months": 24`, `"format": "pdf"`, 1)
	rec = f.do(t, http.MethodPost, "/api/export-report", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendEmail(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendReport", mock.MatchedBy(func(e notify.ReportEmail) bool {
		return e.To == "jane@example.com" && e.GDPRConsent && strings.Contains(e.HTML, "<table")
	})).Return("msg-1", nil).Once()
	f.analytics.On("LogEmailSubmission", mock.MatchedBy(func(s store.EmailSubmission) bool {
		return s.Email == "jane@example.com" && s.CountryCode == "US" && s.GDPRConsent
	})).Return(nil).Once()

	body := `{"email": "jane@example.com", "name": "Jane", "gdpr_consent": true, "calculation": ` + calcBody + `}`
	rec := f.do(t, http.MethodPost, "/api/send-email", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["success"])
	f.mailer.AssertExpectations(t)
	f.analytics.AssertExpectations(t)
}

func TestSendEmail_RequiresConsent(t *testing.T) {
	f := newFixture(t)
	body := `{"email": "jane@example.com", "gdpr_consent": false, "calculation": ` + calcBody + `}`
	rec := f.do(t, http.MethodPost, "/api/send-email", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["detail"], "GDPR consent required")
	f.mailer.AssertNotCalled(t, "SendReport", mock.Anything)
}

// ===== ADMIN =====

func TestAdmin_RequiresToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/admin/analytics", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/analytics", "", "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_Endpoints(t *testing.T) {
	f := newFixture(t)
	auth := []string{"Authorization", "Bearer " + adminToken}

	f.analytics.On("Summary").Return(store.AnalyticsSummary{TotalCalculations: 3}, nil).Once()
	rec := f.do(t, http.MethodGet, "/api/admin/analytics", "", auth...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["total_calculations"])

	f.analytics.On("Submissions", 10).Return([]store.EmailSubmission{{Email: "a@example.com"}}, nil)
	rec = f.do(t, http.MethodGet, "/api/admin/submissions?limit=10", "", auth...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["submissions"], 1)

	f.analytics.On("Exports", 0).Return([]store.ExportEvent{}, nil)
	rec = f.do(t, http.MethodGet, "/api/admin/exports", "", auth...)
	require.Equal(t, http.StatusOK, rec.Code)

	f.analytics.On("Clear", store.KindExports).Return(int64(4), nil)
	rec = f.do(t, http.MethodPost, "/api/admin/clear-data?data_type=exports", "", auth...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cleared 4 records", decode(t, rec)["message"])

	rec = f.do(t, http.MethodPost, "/api/admin/clear-data?data_type=users", "", auth...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.analytics.On("Summary").Return(store.AnalyticsSummary{}, errors.New("db down"))
	rec = f.do(t, http.MethodGet, "/api/admin/analytics", "", auth...)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["detail"])
}
