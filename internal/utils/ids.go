// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of business logic.
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUgyldigID is returned for identifiers that are not archive entries.
var ErrUgyldigID = errors.New("ugyldig journalpostId")

const joarkPrefix = "JOARK"

// ParseJournalpostID accepts "JOARK-<n>" (prefix case-insensitive) or a bare
// "<n>" and returns n. Identifiers of other archive systems
// (e.g. "BID-12") are rejected.
//
//	id, _ := utils.ParseJournalpostID("JOARK-453")  // 453
//	id, _ = utils.ParseJournalpostID("453")         // 453
//	_, err := utils.ParseJournalpostID("BID-453")   // ErrUgyldigID
func ParseJournalpostID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	num := s
	if prefix, rest, ok := strings.Cut(s, "-"); ok {
		if !strings.EqualFold(prefix, joarkPrefix) {
			return 0, fmt.Errorf("%w: %q", ErrUgyldigID, s)
		}
		num = rest
	}
	id, err := strconv.ParseInt(num, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrUgyldigID, s)
	}
	return id, nil
}

// NonEmpty trims every value and drops the empty ones, splitting
// comma-separated entries so that both ?a=x&a=y and ?a=x,y are accepted.
func NonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
