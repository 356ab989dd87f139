// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
)

func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func requiredQuery(r *http.Request, key string) (string, error) {
	v := queryString(r, key)
	if v == "" {
		return "", fmt.Errorf("%w: query parameter %q is required", errBadRequest, key)
	}
	return v, nil
}

func queryInt64(r *http.Request, key string) (int64, bool, error) {
	raw := queryString(r, key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: query parameter %q must be an integer", errBadRequest, key)
	}
	return v, true, nil
}

func queryBool(r *http.Request, key string, def bool) bool {
	switch strings.ToLower(queryString(r, key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

// timerKeyFromQuery reads a timer identity either as an opaque id or as the
// ref/begin/end triple.
func timerKeyFromQuery(r *http.Request) (openwebif.TimerKey, error) {
	if id := queryString(r, "id"); id != "" {
		return repository.ParseTimerID(id)
	}
	ref := queryString(r, "ref")
	begin, hasBegin, err := queryInt64(r, "begin")
	if err != nil {
		return openwebif.TimerKey{}, err
	}
	end, hasEnd, err := queryInt64(r, "end")
	if err != nil {
		return openwebif.TimerKey{}, err
	}
	if ref == "" || !hasBegin || !hasEnd {
		return openwebif.TimerKey{}, fmt.Errorf("%w: id or ref, begin and end are required", repository.ErrInvalidTimer)
	}
	return openwebif.TimerKey{ServiceRef: ref, Begin: begin, End: end}, nil
}
