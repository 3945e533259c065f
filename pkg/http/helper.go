package http

import (
	"net/http"
	"strconv"
	"time"

	"gateless/pkg/config"
	apperrors "gateless/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

func ExtractFloat(r *http.Request, name string) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, apperrors.InvalidInput("missing required parameter: " + name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return v, nil
}

// ExtractTime parses an RFC3339 query parameter. Required parameters report
// their absence as InvalidInput.
func ExtractTime(r *http.Request, name string, required bool) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		if required {
			return time.Time{}, apperrors.InvalidInput("missing required parameter: " + name)
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + name + " parameter, must be RFC3339")
	}
	return t, nil
}

// ExtractDate parses a calendar-day query parameter in YYYY-MM-DD form.
func ExtractDate(r *http.Request, name string, required bool) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		if required {
			return time.Time{}, apperrors.InvalidInput("missing required parameter: " + name)
		}
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + name + " parameter, must be YYYY-MM-DD")
	}
	return t, nil
}
