package quiz

import (
	"strconv"
	"strings"
)

// Grade reports whether resp answers q correctly.
//
// Single-choice variants accept the option text (case-insensitive) or
// its 1-based index. True/false accepts true/false, t/f, yes/no.
// Multi-select requires set equality. Matching requires every pair.
// An intro card without a check question accepts any response.
func Grade(q Question, resp Response) bool {
	switch v := q.(type) {
	case *Recall:
		return choiceMatches(resp.Choice, v.Options, v.Answer)
	case *ReverseRecall:
		return choiceMatches(resp.Choice, v.Options, v.Answer)
	case *Cloze:
		return choiceMatches(resp.Choice, v.Options, v.Answer)
	case *Negation:
		return choiceMatches(resp.Choice, v.Options, v.Answer)
	case *ClassComparison:
		return choiceMatches(resp.Choice, v.Options, v.Answer)
	case *Pearl:
		if len(v.Options) == 0 {
			return true
		}
		return choiceMatches(resp.Choice, v.Options, v.Answer)
	case *TrueFalse:
		b, ok := parseBool(resp.Choice)
		return ok && b == v.Truth
	case *MultiSelect:
		return sameSet(resolveAll(resp.Selected, v.Options), v.Answers)
	case *Matching:
		if len(resp.Pairs) != len(v.Pairs) {
			return false
		}
		for _, p := range v.Pairs {
			got, ok := lookupFold(resp.Pairs, p.Left)
			if !ok || normalize(resolve(got, v.Rights)) != normalize(p.Right) {
				return false
			}
		}
		return true
	}
	return false
}

// CorrectAnswer renders the expected answer for feedback.
func CorrectAnswer(q Question) string {
	switch v := q.(type) {
	case *Recall:
		return v.Answer
	case *ReverseRecall:
		return v.Answer
	case *Cloze:
		return v.Answer
	case *Negation:
		return v.Answer
	case *ClassComparison:
		return v.Answer
	case *Pearl:
		return v.Answer
	case *TrueFalse:
		return strconv.FormatBool(v.Truth)
	case *MultiSelect:
		return strings.Join(v.Answers, ", ")
	case *Matching:
		parts := make([]string, len(v.Pairs))
		for i, p := range v.Pairs {
			parts[i] = p.Left + " = " + p.Right
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

// resolve maps a 1-based index to its option; anything else is returned as is.
func resolve(answer string, options []string) string {
	answer = strings.TrimSpace(answer)
	if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(options) {
		return options[idx-1]
	}
	return answer
}

func resolveAll(answers, options []string) []string {
	out := make([]string, 0, len(answers))
	for _, a := range answers {
		out = append(out, resolve(a, options))
	}
	return out
}

func choiceMatches(choice string, options []string, answer string) bool {
	if strings.TrimSpace(choice) == "" {
		return false
	}
	return normalize(resolve(choice, options)) == normalize(answer)
}

func sameSet(got, want []string) bool {
	g := make(map[string]bool, len(got))
	for _, v := range got {
		g[normalize(v)] = true
	}
	w := make(map[string]bool, len(want))
	for _, v := range want {
		w[normalize(v)] = true
	}
	if len(g) != len(w) {
		return false
	}
	for k := range w {
		if !g[k] {
			return false
		}
	}
	return true
}

func lookupFold(m map[string]string, key string) (string, bool) {
	for k, v := range m {
		if normalize(k) == normalize(key) {
			return v, true
		}
	}
	return "", false
}

func parseBool(s string) (bool, bool) {
	switch normalize(s) {
	case "true", "t", "yes", "y":
		return true, true
	case "false", "f", "no", "n":
		return false, true
	}
	return false, false
}
