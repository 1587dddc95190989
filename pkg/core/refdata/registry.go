// Package refdata serves the read-only country and business-scenario catalogues.
package refdata

import (
	"sort"
	"strings"
	"sync"

	"amplify_roi/pkg/core/validate"
	"amplify_roi/pkg/models"

	"github.com/pkg/errors"
)

// Registry holds countries and business types. Lookups hand out copies of the
// top-level records, and callers must treat nested pointers as read-only.
type Registry struct {
	countries     map[string]models.CountryData
	businessTypes map[string]models.BusinessType
	typeOrder     []string
	mu            sync.RWMutex
}

// SearchResult pairs a matching scenario with its business type.
type SearchResult struct {
	BusinessType models.BusinessType `json:"business_type"`
	Scenario     models.ScenarioData `json:"scenario"`
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		countries:     make(map[string]models.CountryData),
		businessTypes: make(map[string]models.BusinessType),
	}
}

// RegisterCountry validates and stores a country under its upper-cased code.
func (r *Registry) RegisterCountry(c models.CountryData) error {
	if c.Code == "" {
		return models.MissingReferencef("country code cannot be empty")
	}
	c.Code = strings.ToUpper(c.Code)
	if err := validate.ValidateCountry(c); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.countries[c.Code] = c
	return nil
}

// RegisterBusinessType validates every scenario and stores the type.
// Re-registering an id replaces it in place.
func (r *Registry) RegisterBusinessType(bt models.BusinessType) error {
	if bt.ID == "" {
		return models.MissingReferencef("business type id cannot be empty")
	}
	for _, s := range bt.Scenarios {
		if err := validate.ValidateScenario(s); err != nil {
			return errors.Wrapf(err, "business type %q", bt.ID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.businessTypes[bt.ID]; !exists {
		r.typeOrder = append(r.typeOrder, bt.ID)
	}
	r.businessTypes[bt.ID] = bt
	return nil
}

// Country retrieves a country by ISO code (case-insensitive).
func (r *Registry) Country(code string) (models.CountryData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.countries[strings.ToUpper(code)]; ok {
		return c, nil
	}
	return models.CountryData{}, errors.Wrapf(models.ErrNotFound, "country %q", code)
}

// BusinessType retrieves a business type by id.
func (r *Registry) BusinessType(id string) (models.BusinessType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if bt, ok := r.businessTypes[id]; ok {
		return bt, nil
	}
	return models.BusinessType{}, errors.Wrapf(models.ErrNotFound, "business type %q", id)
}

// Scenario retrieves one scenario of a business type.
func (r *Registry) Scenario(businessTypeID, scenarioID string) (models.ScenarioData, error) {
	bt, err := r.BusinessType(businessTypeID)
	if err != nil {
		return models.ScenarioData{}, err
	}
	for _, s := range bt.Scenarios {
		if s.ID == scenarioID {
			return s, nil
		}
	}
	return models.ScenarioData{}, errors.Wrapf(models.ErrNotFound, "scenario %q in business type %q", scenarioID, businessTypeID)
}

// Countries lists all countries sorted by name.
func (r *Registry) Countries() []models.CountryData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CountryData, 0, len(r.countries))
	for _, c := range r.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Currencies lists the distinct currencies of the loaded countries, sorted by code.
func (r *Registry) Currencies() []models.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.countries))
	out := make([]models.Currency, 0, len(r.countries))
	for _, c := range r.countries {
		if seen[c.Currency.Code] {
			continue
		}
		seen[c.Currency.Code] = true
		out = append(out, c.Currency)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// BusinessTypes lists business types in registration order.
func (r *Registry) BusinessTypes() []models.BusinessType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.BusinessType, 0, len(r.typeOrder))
	for _, id := range r.typeOrder {
		out = append(out, r.businessTypes[id])
	}
	return out
}

// Search finds scenarios whose name or description, or whose business type
// name, contains query (case-insensitive). A non-empty category restricts the
// business types searched.
func (r *Registry) Search(query, category string) []SearchResult {
	q := strings.ToLower(query)
	results := []SearchResult{}

	for _, bt := range r.BusinessTypes() {
		if category != "" && string(bt.Category) != category {
			continue
		}
		typeMatch := strings.Contains(strings.ToLower(bt.Name), q)
		for _, s := range bt.Scenarios {
			if typeMatch ||
				strings.Contains(strings.ToLower(s.Name), q) ||
				strings.Contains(strings.ToLower(s.Description), q) {
				results = append(results, SearchResult{BusinessType: bt, Scenario: s})
			}
		}
	}
	return results
}

// Count returns the number of countries and business types loaded.
func (r *Registry) Count() (countries, businessTypes int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.countries), len(r.businessTypes)
}
