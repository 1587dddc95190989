package refdata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"amplify_roi/pkg/core/utils"
	"amplify_roi/pkg/models"

	"gopkg.in/yaml.v2"
)

// Catalogue file base names looked up by LoadFromDirectory.
const (
	countriesFile     = "countries"
	businessTypesFile = "business_types"
)

var supportedExts = []string{".yaml", ".yml", ".json", ".hjson"}

type countriesDoc struct {
	Countries []models.CountryData `json:"countries" yaml:"countries"`
}

type businessTypesDoc struct {
	BusinessTypes []models.BusinessType `json:"business_types" yaml:"business_types"`
}

// LoadFromDirectory builds a registry from the catalogue files in dir.
// Expected structure:
//
//	dir/
//	  countries.yaml        (or .yml / .json / .hjson)
//	  business_types.yaml
//
// Every record is validated while loading; one bad record fails the load.
func LoadFromDirectory(dir string) (*Registry, error) {
	r := NewRegistry()

	countriesPath, err := findCatalogue(dir, countriesFile)
	if err != nil {
		return nil, err
	}
	var cd countriesDoc
	if err := decodeFile(countriesPath, &cd); err != nil {
		return nil, err
	}
	for _, c := range cd.Countries {
		if err := r.RegisterCountry(c); err != nil {
			return nil, fmt.Errorf("%s: %w", countriesPath, err)
		}
	}

	typesPath, err := findCatalogue(dir, businessTypesFile)
	if err != nil {
		return nil, err
	}
	var bd businessTypesDoc
	if err := decodeFile(typesPath, &bd); err != nil {
		return nil, err
	}
	for _, bt := range bd.BusinessTypes {
		if err := r.RegisterBusinessType(bt); err != nil {
			return nil, fmt.Errorf("%s: %w", typesPath, err)
		}
	}

	return r, nil
}

func findCatalogue(dir, base string) (string, error) {
	for _, ext := range supportedExts {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no %s catalogue (%s) found in %s", base, strings.Join(supportedExts, ", "), dir)
}

func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = utils.DecodeHJSON(data, v)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
