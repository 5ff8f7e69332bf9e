package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/rxdrill/internal/quiz"
	"github.com/abhisek/rxdrill/internal/session"
	"github.com/abhisek/rxdrill/internal/ui/theme"
)

// RenderQuestion renders q for a line-oriented terminal. Options are
// numbered from 1 so they can be answered by index.
func RenderQuestion(q quiz.Question, index, total int) string {
	h := q.Header()
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", theme.Subtitle.Render(fmt.Sprintf("[%d/%d]", index, total)), theme.Hint.Render(string(h.Kind)))

	switch v := q.(type) {
	case *quiz.Pearl:
		if h.Phase == quiz.PhaseIntro {
			b.WriteString(theme.Card.Render(theme.Title.Render(v.Title)+"\n"+theme.Body.Render(v.Body)) + "\n")
			if len(v.Options) == 0 {
				b.WriteString(theme.Hint.Render("Press enter to continue.") + "\n")
				return b.String()
			}
		} else if v.Body != "" {
			b.WriteString(theme.Body.Render(v.Body) + "\n")
		}
		writePrompt(&b, h.Prompt)
		writeOptions(&b, v.Options)
	case *quiz.Cloze:
		writePrompt(&b, h.Prompt)
		b.WriteString(theme.Body.Render(v.Text) + "\n")
		writeOptions(&b, v.Options)
	case *quiz.Recall:
		writePrompt(&b, h.Prompt)
		writeOptions(&b, v.Options)
	case *quiz.ReverseRecall:
		writePrompt(&b, h.Prompt)
		writeOptions(&b, v.Options)
	case *quiz.Negation:
		writePrompt(&b, h.Prompt)
		writeOptions(&b, v.Options)
	case *quiz.ClassComparison:
		writePrompt(&b, h.Prompt)
		writeOptions(&b, v.Options)
	case *quiz.MultiSelect:
		writePrompt(&b, h.Prompt)
		writeOptions(&b, v.Options)
		b.WriteString(theme.Hint.Render("Select all that apply, e.g. 1,3") + "\n")
	case *quiz.TrueFalse:
		writePrompt(&b, h.Prompt)
		b.WriteString(theme.Body.Render(v.Statement) + "\n")
		b.WriteString(theme.Hint.Render("true / false") + "\n")
	case *quiz.Matching:
		writePrompt(&b, h.Prompt)
		for i, p := range v.Pairs {
			fmt.Fprintf(&b, "  %c) %s\n", rune('a'+i), p.Left)
		}
		writeOptions(&b, v.Rights)
		b.WriteString(theme.Hint.Render("Give the number for each letter in order, e.g. 2,1,3") + "\n")
	default:
		writePrompt(&b, h.Prompt)
	}
	return b.String()
}

func writePrompt(b *strings.Builder, prompt string) {
	b.WriteString(theme.Value.Render(prompt) + "\n")
}

func writeOptions(b *strings.Builder, options []string) {
	for i, opt := range options {
		fmt.Fprintf(b, "  %d) %s\n", i+1, opt)
	}
}

// ParseResponse turns one input line into a response for q.
func ParseResponse(q quiz.Question, line string) quiz.Response {
	line = strings.TrimSpace(line)
	switch v := q.(type) {
	case *quiz.MultiSelect:
		return quiz.Response{Selected: splitList(line)}
	case *quiz.Matching:
		picks := splitList(line)
		pairs := make(map[string]string, len(v.Pairs))
		for i, p := range v.Pairs {
			if i < len(picks) {
				pairs[p.Left] = picks[i]
			}
		}
		return quiz.Response{Pairs: pairs}
	}
	return quiz.Response{Choice: line}
}

func splitList(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// RenderFeedback renders a graded answer.
func RenderFeedback(fb session.Feedback) string {
	var b strings.Builder
	if fb.Correct {
		b.WriteString(theme.Correct.Render("✓ Correct"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ Incorrect"))
		if fb.CorrectAnswer != "" {
			b.WriteString("  " + theme.Body.Render("Answer: "+fb.CorrectAnswer))
		}
	}
	b.WriteString("\n")
	if fb.Explanation != "" {
		b.WriteString(theme.Hint.Render(fb.Explanation) + "\n")
	}
	return b.String()
}
