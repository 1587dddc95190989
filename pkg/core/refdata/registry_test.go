package refdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"amplify_roi/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundledData = "../../../data"

func TestLoadFromDirectory_BundledData(t *testing.T) {
	r, err := LoadFromDirectory(bundledData)
	require.NoError(t, err)

	countries, types := r.Count()
	assert.Equal(t, 25, countries)
	assert.Equal(t, 5, types)

	us, err := r.Country("us")
	require.NoError(t, err)
	assert.Equal(t, "United States", us.Name)
	assert.Equal(t, 0.21, *us.TaxRates.CorporateTax)
	assert.True(t, us.TaxRates.VariesByState)

	// "NO" must stay a string, not a YAML boolean.
	no, err := r.Country("NO")
	require.NoError(t, err)
	assert.Equal(t, "NOK", no.Currency.Code)

	jp, err := r.Country("JP")
	require.NoError(t, err)
	assert.Equal(t, 0, jp.Currency.DecimalPlaces)

	box, err := r.Scenario("ecommerce", "subscription-box")
	require.NoError(t, err)
	assert.Equal(t, 0.08, *box.Metrics.ChurnRate)
	assert.Equal(t, 0.18, *box.Metrics.FulfillmentCost)

	seed, err := r.Scenario("startup", "seed")
	require.NoError(t, err)
	assert.Nil(t, seed.Metrics.ChurnRate)
	assert.Equal(t, 15, seed.Metrics.PaymentTerms)
	assert.Equal(t, 0.3, seed.Metrics.MarketingBudget.Percentage)
}

func TestRegistry_NotFound(t *testing.T) {
	r, err := LoadFromDirectory(bundledData)
	require.NoError(t, err)

	_, err = r.Country("XX")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	_, err = r.BusinessType("bakery")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	_, err = r.Scenario("saas", "nope")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestRegistry_Search(t *testing.T) {
	r, err := LoadFromDirectory(bundledData)
	require.NoError(t, err)

	hits := r.Search("SUBSCRIPTION", "")
	require.NotEmpty(t, hits)
	found := false
	for _, h := range hits {
		if h.Scenario.ID == "subscription-box" {
			found = true
			assert.Equal(t, "ecommerce", h.BusinessType.ID)
		}
	}
	assert.True(t, found)

	// A business type name match returns all of its scenarios.
	saas := r.Search("saas", "model")
	bt, err := r.BusinessType("saas")
	require.NoError(t, err)
	assert.Len(t, saas, len(bt.Scenarios))

	assert.Empty(t, r.Search("subscription", "stage"))
	assert.Empty(t, r.Search("zzz-no-match", ""))
}

func TestRegistry_Currencies(t *testing.T) {
	r, err := LoadFromDirectory(bundledData)
	require.NoError(t, err)

	cur := r.Currencies()
	require.NotEmpty(t, cur)
	codes := make(map[string]bool)
	for i, c := range cur {
		assert.False(t, codes[c.Code], "duplicate %s", c.Code)
		codes[c.Code] = true
		if i > 0 {
			assert.Less(t, cur[i-1].Code, c.Code)
		}
	}
	assert.True(t, codes["EUR"])
	assert.True(t, codes["NOK"])
}

func TestRegistry_OrderAndReplace(t *testing.T) {
	r := NewRegistry()
	first := models.BusinessType{ID: "b", Name: "B"}
	require.NoError(t, r.RegisterBusinessType(first))
	require.NoError(t, r.RegisterBusinessType(models.BusinessType{ID: "a", Name: "A"}))
	require.NoError(t, r.RegisterBusinessType(models.BusinessType{ID: "b", Name: "B2"}))

	types := r.BusinessTypes()
	require.Len(t, types, 2)
	assert.Equal(t, "B2", types[0].Name)
	assert.Equal(t, "a", types[1].ID)
}

func TestRegistry_RejectsInvalidRecords(t *testing.T) {
	r := NewRegistry()

	err := r.RegisterCountry(models.CountryData{Code: "ZZ", Name: "Nowhere", Currency: models.Currency{Code: "ZZD"}})
	assert.True(t, errors.Is(err, models.ErrMissingReferenceData))

	err = r.RegisterBusinessType(models.BusinessType{ID: "x", Scenarios: []models.ScenarioData{{ID: "broken"}}})
	assert.True(t, errors.Is(err, models.ErrMissingReferenceData))
}

func TestLoadFromDirectory_HJSON(t *testing.T) {
	dir := t.TempDir()
	countries := `{
	  // hand-edited
	  countries: [
	    {
	      code: de
	      name: Germany
	      currency: { code: "EUR", symbol: "€", name: "Euro", decimal_places: 2 }
	      tax_rates: { corporate_tax: 0.298, vat: 0.19, payroll_tax: 0.203 }
	      economic_indicators: { inflation: 0.023 }
	    }
	  ]
	}`
	types := `{"business_types": [{"id": "smb", "name": "SMB", "category": "size", "scenarios": []}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "countries.hjson"), []byte(countries), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "business_types.json"), []byte(types), 0o644))

	r, err := LoadFromDirectory(dir)
	require.NoError(t, err)

	de, err := r.Country("DE")
	require.NoError(t, err)
	assert.Equal(t, 0.19, *de.TaxRates.VAT)
	assert.Nil(t, de.TaxRates.CapitalGains)
}

func TestLoadFromDirectory_Missing(t *testing.T) {
	_, err := LoadFromDirectory(t.TempDir())
	assert.Error(t, err)
}
