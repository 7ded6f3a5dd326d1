package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CityColumn is the free-text column holding patient city names. The stored
// values use canonical capitalization ("Porto Alegre"), so equality
// comparisons against lower-cased literals never match.
const CityColumn = "CIDADE_RESIDENCIA_PACIENTE"

var (
	cityUpperCallRe = regexp.MustCompile(`(?i)` + CityColumn + `\s*=\s*UPPER\s*\(\s*'([^']+)'\s*\)`)
	cityLowerCallRe = regexp.MustCompile(`(?i)` + CityColumn + `\s*=\s*LOWER\s*\(\s*'([^']+)'\s*\)`)
	cityBareRe      = regexp.MustCompile(CityColumn + `\s*=\s*'([a-z][^']*)'`)
)

// NormalizeCityCase rewrites city-name equality comparisons to the canonical
// title-case form stored in the database.
//
// Handled shapes, in priority order:
//  1. CIDADE_RESIDENCIA_PACIENTE = UPPER('porto alegre')
//  2. CIDADE_RESIDENCIA_PACIENTE = LOWER('porto alegre')
//  3. CIDADE_RESIDENCIA_PACIENTE = 'porto alegre' (entirely lower-case only)
//
// All become CIDADE_RESIDENCIA_PACIENTE = 'Porto Alegre'. Literals that are
// not entirely lower-case are assumed already correct and left untouched,
// which also makes the rewrite idempotent. Nothing outside the matched spans
// is modified.
func NormalizeCityCase(sqlQuery string) string {
	if sqlQuery == "" {
		return sqlQuery
	}

	fixed := cityUpperCallRe.ReplaceAllStringFunc(sqlQuery, func(match string) string {
		return replaceCityComparison(cityUpperCallRe, match)
	})
	fixed = cityLowerCallRe.ReplaceAllStringFunc(fixed, func(match string) string {
		return replaceCityComparison(cityLowerCallRe, match)
	})
	fixed = cityBareRe.ReplaceAllStringFunc(fixed, func(match string) string {
		m := cityBareRe.FindStringSubmatch(match)
		if m == nil || m[1] != strings.ToLower(m[1]) {
			return match
		}
		return fmt.Sprintf("%s = '%s'", CityColumn, titleCase(m[1]))
	})

	return fixed
}

func replaceCityComparison(re *regexp.Regexp, match string) string {
	m := re.FindStringSubmatch(match)
	if m == nil {
		return match
	}
	return fmt.Sprintf("%s = '%s'", CityColumn, titleCase(m[1]))
}

// titleCase capitalizes each word of a city name using Brazilian Portuguese
// casing rules. A fresh caser per call keeps this safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(s)
}
