// internal/seasons/key.go

// Package seasons holds season-key normalization and the lifecycle
// operations that keep a club's season data consistent across its
// denormalized collections.
package seasons

import "regexp"

// Seasons are labeled in slash form ("2024/25") for display and keyed in
// dash form ("2024-25") in the store, because slashes are not legal in
// document-path segments. Both forms, with 2- or 4-digit trailing years,
// arrive from callers and must normalize to the same identity.
var seasonPattern = regexp.MustCompile(`^(\d{4})[-/](\d{4}|\d{2})$`)

// SlashForm canonicalizes a season string to "YYYY/YY". Input that does
// not match a recognized form is returned unchanged; callers must not
// assume normalization always rewrites the string.
func SlashForm(season string) string {
	m := seasonPattern.FindStringSubmatch(season)
	if m == nil {
		return season
	}
	return m[1] + "/" + shortYear(m[2])
}

// DashForm canonicalizes a season string to "YYYY-YY", the storage key
// form. Unrecognized input passes through unchanged.
func DashForm(season string) string {
	m := seasonPattern.FindStringSubmatch(season)
	if m == nil {
		return season
	}
	return m[1] + "-" + shortYear(m[2])
}

// Keys returns both canonical forms for a season string.
func Keys(season string) (dash, slash string) {
	return DashForm(season), SlashForm(season)
}

func shortYear(year string) string {
	if len(year) == 4 {
		return year[2:]
	}
	return year
}
