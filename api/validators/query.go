package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/prices-backend/pkg/errors"
)

// LocalDateTimeLayout is the ISO date-time without offset accepted for the date parameter.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParsePositiveID reads the first non-empty key; later keys are aliases. Missing values are an
// error when required, otherwise they return 0.
func ParsePositiveID(r *http.Request, required bool, keys ...string) (int64, error) {
	field := keys[0]
	raw := ""
	for _, key := range keys {
		if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
			raw = v
			break
		}
	}
	if raw == "" {
		if !required {
			return 0, nil
		}
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "missing query parameter").WithDetails(map[string]any{"field": field})
	}
	return parsePositive(field, raw)
}

// ParsePathID validates an id taken from the URL path.
func ParsePathID(field, raw string) (int64, error) {
	return parsePositive(field, strings.TrimSpace(raw))
}

func parsePositive(field, raw string) (int64, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "parameter must be an integer").WithDetails(map[string]any{"field": field})
	}
	if value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "parameter must be positive").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

// ParseQueryInstant accepts RFC 3339 or a local date-time interpreted in loc.
func ParseQueryInstant(r *http.Request, key string, loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "missing query parameter").WithDetails(map[string]any{"field": key})
	}
	if loc == nil {
		loc = time.UTC
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.ParseInLocation(LocalDateTimeLayout, raw, loc); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid date").
		WithDetails(map[string]any{"field": key, "formats": []string{time.RFC3339, LocalDateTimeLayout}})
}
