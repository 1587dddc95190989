package utils

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Parse strategies reported by SmartParse.
const (
	StrategyJSON   = "json"
	StrategyRepair = "repair"
	StrategyHJSON  = "hjson"
)

// RepairJSON fixes common hand-editing mistakes: single quotes, unquoted
// keys, trailing commas, comments, unclosed objects.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
// Plain JSON is valid Hjson, so this also accepts ordinary JSON documents.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(jsonBytes), nil
}

// DecodeHJSON decodes Hjson (or JSON) into a typed value using its json tags.
func DecodeHJSON(data []byte, v interface{}) error {
	normalized, err := ParseHJSON(string(data))
	if err != nil {
		return err
	}
	return decodeStrict([]byte(normalized), v)
}

// SmartParse decodes input into v, trying progressively more lenient parsers:
//  1. Standard JSON
//  2. JSON repair
//  3. Hjson
//
// It returns the strategy that succeeded. Unknown fields are rejected by every
// strategy so that typos in field names surface instead of silently falling
// back to defaults.
func SmartParse(input []byte, v interface{}) (string, error) {
	// Try 1: Standard JSON
	firstErr := decodeStrict(input, v)
	if firstErr == nil {
		return StrategyJSON, nil
	}

	// Try 2: JSON Repair
	if repaired, err := RepairJSON(string(input)); err == nil {
		if err := decodeStrict([]byte(repaired), v); err == nil {
			return StrategyRepair, nil
		}
	}

	// Try 3: Hjson (most lenient)
	if err := DecodeHJSON(input, v); err == nil {
		return StrategyHJSON, nil
	}

	return "", fmt.Errorf("SMART_PARSE_FAILED: %v", firstErr)
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
