package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/datasus-ai/txt2sql-engine/pkg/apperrors"
)

// sqlPatterns locate the executable statement inside an agent transcript.
// Transcripts often contain several candidate-looking spans (SQL echoed in
// prose, reasoning steps), so the structurally most explicit form wins:
// a tagged fence, an untagged fence, an agent action marker, then a bare
// SELECT running to end of line.
var sqlPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?is)```sql\\n(.*?)\\n```"),
	regexp.MustCompile("(?is)```\\n(SELECT.*?)\\n```"),
	regexp.MustCompile(`(?is)Action Input:\s*(SELECT.*?)(?:\n|$)`),
	regexp.MustCompile(`(?is)(SELECT.*?)(?:\n|$)`),
}

// ExtractSQL locates the SQL statement inside an agent's free-text
// transcript. Patterns are tried in fixed priority order and the first
// match's capture is returned, trimmed.
//
// Returns apperrors.ErrNoSQLFound when no pattern matches; an empty string
// is never silently substituted for missing SQL.
func ExtractSQL(agentText string) (string, error) {
	for _, re := range sqlPatterns {
		if m := re.FindStringSubmatch(agentText); m != nil {
			return strings.TrimSpace(m[1]), nil
		}
	}
	return "", fmt.Errorf("extract SQL: %w", apperrors.ErrNoSQLFound)
}
