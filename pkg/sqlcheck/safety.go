// Package sqlcheck provides the pure text-processing stages of the query
// pipeline: SQL safety validation, city-name case normalization, SQL
// extraction from agent transcripts, and recovery of numeric answers from
// narrated conclusions.
package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/datasus-ai/txt2sql-engine/pkg/models"
)

// denyKeywords are statement types and engine procedures that signal data or
// schema mutation. Any occurrence blocks execution. Scanned case-insensitively
// in deny-list order so the first reason reported is deterministic.
var denyKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE", "TRUNCATE",
	"EXEC", "EXECUTE", "XP_", "SP_", "BULK", "OPENROWSET",
}

// suspiciousPattern is one compound-injection indicator. A match is reported
// as a warning and also blocks execution: comments and stacked statements in
// generated SQL are injection markers, not style issues.
type suspiciousPattern struct {
	re     *regexp.Regexp
	reason string
}

var suspiciousPatterns = []suspiciousPattern{
	{regexp.MustCompile(`--`), "comentário SQL (--)"},
	{regexp.MustCompile(`(?s)/\*.*\*/`), "comentário em bloco (/* */)"},
	{regexp.MustCompile(`(?i);.*DROP`), "múltiplas instruções com DROP"},
	{regexp.MustCompile(`(?i);.*DELETE`), "múltiplas instruções com DELETE"},
}

// Validate classifies a SQL string as allowed or blocked.
//
// The checks run in a fixed order: deny-list keywords, suspicious lexical
// patterns, embedded statement terminators, injection fingerprints inside
// string literals, and finally the SELECT-only sanity check. Pure and
// deterministic; never touches the database.
func Validate(sqlQuery string) models.ValidationResult {
	warnings := []string{}
	blockedReasons := []string{}

	sqlUpper := strings.ToUpper(sqlQuery)
	for _, keyword := range denyKeywords {
		if strings.Contains(sqlUpper, keyword) {
			blockedReasons = append(blockedReasons,
				fmt.Sprintf("Palavra-chave perigosa detectada: %s", keyword))
		}
	}

	for _, p := range suspiciousPatterns {
		if p.re.MatchString(sqlQuery) {
			reason := fmt.Sprintf("Padrão suspeito detectado: %s", p.reason)
			warnings = append(warnings, reason)
			blockedReasons = append(blockedReasons, reason)
		}
	}

	// A semicolon that is not the trailing terminator means a second
	// statement is stacked behind the first.
	if hasSemicolonOutsideStrings(stripTrailingSemicolon(sqlQuery)) {
		reason := "Padrão suspeito detectado: múltiplas instruções SQL"
		warnings = append(warnings, reason)
		blockedReasons = append(blockedReasons, reason)
	}

	// String literals are the one place free text reaches the engine; run
	// libinjection over each literal's contents.
	for _, literal := range extractStringLiterals(sqlQuery) {
		if isSQLi, fingerprint := libinjection.IsSQLi(literal); isSQLi {
			blockedReasons = append(blockedReasons,
				fmt.Sprintf("Padrão de injeção detectado no literal '%s' (fingerprint %s)",
					literal, fingerprint))
		}
	}

	isValid := true
	if !strings.HasPrefix(strings.TrimSpace(sqlUpper), "SELECT") {
		warnings = append(warnings, "Consulta não é uma operação SELECT")
		isValid = false
	}

	return models.ValidationResult{
		IsValid:        isValid,
		IsSafe:         len(blockedReasons) == 0,
		Warnings:       warnings,
		BlockedReasons: blockedReasons,
	}
}

// stripTrailingSemicolon removes a trailing semicolon and surrounding
// whitespace so a conventional statement terminator is not mistaken for a
// stacked statement.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimRight(strings.TrimSuffix(sqlQuery, ";"), " \t\n\r")
	}
	return sqlQuery
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// SQL standard doubled quote ('') exits and immediately
			// re-enters on the next quote, which keeps us in the string.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// extractStringLiterals extracts all single-quoted string literals from SQL,
// handling the SQL escaped quote ('').
func extractStringLiterals(sql string) []string {
	var literals []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(sql); i++ {
		if sql[i] == '\'' {
			if inString {
				if i+1 < len(sql) && sql[i+1] == '\'' {
					current.WriteByte('\'')
					i++
				} else {
					if current.Len() > 0 {
						literals = append(literals, current.String())
					}
					current.Reset()
					inString = false
				}
			} else {
				inString = true
			}
		} else if inString {
			current.WriteByte(sql[i])
		}
	}

	return literals
}
