package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"goeda/domain/table"
)

// TypeCoercer handles deterministic type coercion for raw cell strings
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // % of values that must parse as numbers
	TimestampThreshold float64 `json:"timestamp_threshold"` // % of values that must parse as timestamps
	MaxCategories      int     `json:"max_categories"`      // unique values above this make a column text
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		TimestampThreshold: 0.8,
		MaxCategories:      100,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// missingTokens are source encodings that pandas-style readers treat as null
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"nan":  true,
	"none": true,
	"-":    true,
}

// IsMissing reports whether a raw cell encodes a missing value
func IsMissing(raw string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(raw))]
}

// CoerceValue deterministically converts a raw cell to a typed Value
func (c *TypeCoercer) CoerceValue(raw string) table.Value {
	if IsMissing(raw) {
		return table.NewMissingValue()
	}

	strVal := strings.TrimSpace(raw)

	// Try numeric first (most restrictive)
	if v, ok := c.tryParseNumeric(strVal); ok {
		return table.NewNumericValue(v)
	}

	if t, ok := c.tryParseTimestamp(strVal); ok {
		return table.NewTimestampValue(t)
	}

	return table.NewStringValue(strVal)
}

// InferColumnKind determines a column's kind from the ratio of cells that
// coerce to each type, considering only non-missing cells.
func (c *TypeCoercer) InferColumnKind(raws []string) table.ColumnKind {
	valid := 0
	numeric := 0
	timestamp := 0
	unique := make(map[string]struct{})

	for _, raw := range raws {
		if IsMissing(raw) {
			continue
		}
		valid++
		strVal := strings.TrimSpace(raw)
		if _, ok := c.tryParseNumeric(strVal); ok {
			numeric++
		}
		if _, ok := c.tryParseTimestamp(strVal); ok {
			timestamp++
		}
		if len(unique) <= c.config.MaxCategories {
			unique[strVal] = struct{}{}
		}
	}

	if valid == 0 {
		// Nothing to go on; treat as text so the column still gets a summary
		return table.KindText
	}

	if float64(numeric)/float64(valid) >= c.config.NumericThreshold {
		return table.KindNumeric
	}
	if float64(timestamp)/float64(valid) >= c.config.TimestampThreshold {
		return table.KindDatetime
	}
	if len(unique) <= c.config.MaxCategories {
		return table.KindCategorical
	}
	return table.KindText
}

// CoerceColumn converts raw cells into typed values for the given kind.
// Cells that fail to coerce to the column's kind are recorded as missing.
func (c *TypeCoercer) CoerceColumn(name string, kind table.ColumnKind, raws []string) table.Column {
	cells := make([]table.Value, len(raws))
	for i, raw := range raws {
		if IsMissing(raw) {
			cells[i] = table.NewMissingValue()
			continue
		}
		strVal := strings.TrimSpace(raw)
		switch kind {
		case table.KindNumeric:
			if v, ok := c.tryParseNumeric(strVal); ok {
				cells[i] = table.NewNumericValue(v)
			} else {
				cells[i] = table.NewMissingValue()
			}
		case table.KindDatetime:
			if t, ok := c.tryParseTimestamp(strVal); ok {
				cells[i] = table.NewTimestampValue(t)
			} else {
				cells[i] = table.NewMissingValue()
			}
		default:
			cells[i] = table.NewStringValue(strVal)
		}
	}
	return table.Column{Name: name, Kind: kind, Cells: cells}
}

// tryParseNumeric attempts to parse as numeric with strict rules.
// Handles international formats: parentheses for negatives, European
// decimals, currency symbols, percentages.
func (c *TypeCoercer) tryParseNumeric(strVal string) (float64, bool) {
	if strVal == "" {
		return 0, false
	}

	cleanVal := strings.TrimSpace(strVal)

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimPrefix(cleanVal, "(")
		cleanVal = strings.TrimSuffix(cleanVal, ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")
	cleanVal = strings.TrimSpace(cleanVal)
	if cleanVal == "" {
		return 0, false
	}

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	if hasComma && (hasPeriod || hasSpace) {
		// Decide whether the comma is a European decimal separator by the
		// digit count after it
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 3 && isAllDigits(afterComma) {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	} else if hasComma && !hasPeriod {
		// Only comma present: thousands separator when it groups exactly
		// three digits, decimal separator otherwise
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) == 3 && isAllDigits(afterComma) && strings.Count(cleanVal, ",") >= 1 && commaIdx > 0 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	} else {
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	if val, err := strconv.ParseFloat(cleanVal, 64); err == nil {
		if !math.IsInf(val, 0) && !math.IsNaN(val) {
			return val, true
		}
	}

	return 0, false
}

// tryParseTimestamp attempts to parse as timestamp with multiple formats
func (c *TypeCoercer) tryParseTimestamp(strVal string) (time.Time, bool) {
	if strVal == "" {
		return time.Time{}, false
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"01/02/2006",
		"2006/01/02",
		"02-Jan-2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, strVal); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
