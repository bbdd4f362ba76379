package insights

import (
	"regexp"
	"strings"
)

// CompareApology is returned when a compare question cannot be fully resolved.
const CompareApology = "I couldn't work out which two numeric columns to compare and what to group them by. " +
	"Try something like \"compare Revenue vs Cost by Country\"."

var (
	compareKeyword = regexp.MustCompile(`(?i)\bcompare\s+(.+?)\s+(?:and|vs\.?|versus|with|against)\s+(.+?)(?:\s+(?:by|per)\s+(.+?))?\s*[?.!]*$`)
	compareInfix   = regexp.MustCompile(`(?i)^(.+?)\s+(?:vs\.?|versus)\s+(.+?)(?:\s+(?:by|per)\s+(.+?))?\s*[?.!]*$`)
)

// CompareColumns are the resolved sides and grouping of a compare question.
type CompareColumns struct {
	Left    string
	Right   string
	GroupBy string
}

type compareHints struct {
	left, right, group string
}

func parseCompareHints(question string) (compareHints, bool) {
	q := strings.TrimSpace(question)
	for _, re := range []*regexp.Regexp{compareKeyword, compareInfix} {
		if m := re.FindStringSubmatch(q); m != nil {
			return compareHints{
				left:  strings.TrimSpace(m[1]),
				right: strings.TrimSpace(m[2]),
				group: strings.TrimSpace(m[3]),
			}, true
		}
	}
	return compareHints{}, false
}

// HasCompareSyntax reports whether the question reads like "compare A and B" or "A vs B".
func HasCompareSyntax(question string) bool {
	_, ok := parseCompareHints(question)
	return ok
}

// ResolveCompare resolves the left and right measure columns and the grouping column.
// Hints that do not match a column fall back to the most relevant numeric columns; the
// grouping falls back to the first categorical column, then to any remaining column.
// All three must resolve.
func ResolveCompare(question string, columns []string, kinds ColumnKinds) (CompareColumns, bool) {
	hints, _ := parseCompareHints(question)

	numericCandidates := make([]string, 0, len(kinds.Numeric))
	for _, m := range RankColumns(question, columns) {
		if contains(kinds.Numeric, m.Column) {
			numericCandidates = append(numericCandidates, m.Column)
		}
	}

	var out CompareColumns
	if hints.left != "" {
		if m, ok := ResolveColumn(hints.left, columns); ok {
			out.Left = m.Column
		}
	}
	if out.Left == "" && len(numericCandidates) > 0 {
		out.Left = numericCandidates[0]
	}
	if out.Left == "" {
		return out, false
	}

	if hints.right != "" {
		if m, ok := ResolveColumn(hints.right, without(columns, out.Left)); ok {
			out.Right = m.Column
		}
	}
	if out.Right == "" {
		for _, c := range numericCandidates {
			if c != out.Left {
				out.Right = c
				break
			}
		}
	}
	if out.Right == "" {
		return out, false
	}

	remaining := without(columns, out.Left, out.Right)
	if g, ok := DetectGroupBy(question, remaining); ok {
		out.GroupBy = g
	} else if hints.group != "" {
		if m, ok := ResolveColumn(hints.group, remaining); ok {
			out.GroupBy = m.Column
		}
	}
	if out.GroupBy == "" {
		if cats := without(kinds.Categorical, out.Left, out.Right); len(cats) > 0 {
			out.GroupBy = cats[0]
		} else if len(remaining) > 0 {
			out.GroupBy = remaining[0]
		}
	}
	return out, out.GroupBy != ""
}
