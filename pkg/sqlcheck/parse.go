package sqlcheck

import (
	"regexp"
	"strconv"
	"strings"
)

// Parsing strategy names, recorded in result metadata so operators can see
// which recovery path fired.
const (
	StrategyResultTuple = "result_tuple"
	StrategyFinalAnswer = "final_answer"
	StrategyRankedList  = "ranked_list"
	StrategyFinalPhrase = "final_answer_phrase"
	StrategyResultWas   = "result_was"
	StrategyNumericLine = "numeric_first_line"
	StrategyObservation = "observation"
)

var (
	resultTupleRe = regexp.MustCompile(`\[\((\d+),\)\]`)
	rankedListRe  = regexp.MustCompile(`(\d+)\. ([\p{L}\w\s]+?) - (\d+)`)
	finalPhraseRe = regexp.MustCompile(`(?i)final answer[^0-9]*(\d+)`)
	resultWasRe   = regexp.MustCompile(`(?i)result was (\d+)`)
	firstIntRe    = regexp.MustCompile(`\d+`)
)

// ParsedAnswer is a structured answer recovered from an agent's narrated
// conclusion. Strategy is empty when nothing could be recovered, which is a
// legitimate outcome for non-numeric answers, not an error.
type ParsedAnswer struct {
	Rows     []map[string]any
	Columns  []string
	RowCount int
	Strategy string
}

// ParseAgentResults recovers a numeric or tabular answer from an agent
// transcript when structured execution output is unavailable.
//
// Strategies are applied in fixed priority order until one yields a value:
// a literal one-row tuple rendering of a result set, a "Final Answer:"
// marker (including ranked-list answers), the phrase "final answer", the
// phrase "result was", a purely numeric first line, and finally an
// "Observation:" marker. Single-value strategies wrap the integer in a
// one-column row named "result" so downstream consumers always see a
// uniform shape.
func ParseAgentResults(agentText string) ParsedAnswer {
	if m := resultTupleRe.FindStringSubmatch(agentText); m != nil {
		return singleResult(m[1], StrategyResultTuple)
	}

	if idx := strings.Index(agentText, "Final Answer:"); idx != -1 {
		answerPart := strings.TrimSpace(agentText[idx+len("Final Answer:"):])

		// Ranked answers ("1. Uruguaiana - 20, 2. Ijuí - 18, ...")
		// carry one row per entry instead of a single scalar.
		if matches := rankedListRe.FindAllStringSubmatch(answerPart, -1); len(matches) > 0 {
			rows := make([]map[string]any, 0, len(matches))
			for rank, m := range matches {
				count, _ := strconv.Atoi(m[3])
				rows = append(rows, map[string]any{
					"rank":  rank + 1,
					"city":  strings.TrimSpace(m[2]),
					"count": count,
				})
			}
			return ParsedAnswer{
				Rows:     rows,
				Columns:  []string{"rank", "city", "count"},
				RowCount: len(rows),
				Strategy: StrategyRankedList,
			}
		}

		if token := firstIntRe.FindString(answerPart); token != "" {
			return singleResult(token, StrategyFinalAnswer)
		}
	}

	if m := finalPhraseRe.FindStringSubmatch(agentText); m != nil {
		return singleResult(m[1], StrategyFinalPhrase)
	}

	if m := resultWasRe.FindStringSubmatch(agentText); m != nil {
		return singleResult(m[1], StrategyResultWas)
	}

	firstLine := strings.TrimSpace(strings.SplitN(strings.TrimSpace(agentText), "\n", 2)[0])
	if firstLine != "" && isAllDigits(firstLine) {
		return singleResult(firstLine, StrategyNumericLine)
	}

	if idx := strings.Index(agentText, "Observation:"); idx != -1 {
		if token := firstIntRe.FindString(agentText[idx+len("Observation:"):]); token != "" {
			return singleResult(token, StrategyObservation)
		}
	}

	return ParsedAnswer{}
}

func singleResult(token, strategy string) ParsedAnswer {
	value, err := strconv.Atoi(token)
	if err != nil {
		return ParsedAnswer{}
	}
	return ParsedAnswer{
		Rows:     []map[string]any{{"result": value}},
		Columns:  []string{"result"},
		RowCount: 1,
		Strategy: strategy,
	}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
