package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable means the archetype cannot be built from the given
// pool. Callers skip it and try another.
var ErrUnavailable = errors.New("question archetype unavailable")

// errNoAbsent means a negation archetype found no value outside the
// item's own list to serve as the "not mine" answer.
var errNoAbsent = errors.New("no absent attribute value")

func checkBase(b Base) error {
	if strings.TrimSpace(b.Prompt) == "" {
		return fmt.Errorf("%s: empty prompt", b.Kind)
	}
	if b.ItemID == "" {
		return fmt.Errorf("%s: empty item id", b.Kind)
	}
	return nil
}

func checkChoice(b Base, options []string, answer string) error {
	if err := checkBase(b); err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("%s: empty answer", b.Kind)
	}
	if len(options) == 0 {
		return fmt.Errorf("%s: no options", b.Kind)
	}
	if !containsFold(options, answer) {
		return fmt.Errorf("%s: answer %q missing from options", b.Kind, answer)
	}
	return nil
}

func newRecall(b Base, options []string, answer string) (*Recall, error) {
	if err := checkChoice(b, options, answer); err != nil {
		return nil, err
	}
	b.Variant = VariantRecall
	return &Recall{Base: b, Options: options, Answer: answer}, nil
}

func newReverseRecall(b Base, options []string, answer string) (*ReverseRecall, error) {
	if err := checkChoice(b, options, answer); err != nil {
		return nil, err
	}
	b.Variant = VariantReverseRecall
	return &ReverseRecall{Base: b, Options: options, Answer: answer}, nil
}

func newCloze(b Base, text string, options []string, answer string) (*Cloze, error) {
	if err := checkChoice(b, options, answer); err != nil {
		return nil, err
	}
	if !strings.Contains(text, blank) {
		return nil, fmt.Errorf("%s: text has no blank", b.Kind)
	}
	b.Variant = VariantCloze
	return &Cloze{Base: b, Text: text, Options: options, Answer: answer}, nil
}

func newNegation(b Base, options []string, answer string) (*Negation, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, errNoAbsent
	}
	if err := checkChoice(b, options, answer); err != nil {
		return nil, err
	}
	b.Variant = VariantNegation
	return &Negation{Base: b, Options: options, Answer: answer}, nil
}

func newMultiSelect(b Base, options, answers []string) (*MultiSelect, error) {
	if err := checkBase(b); err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%s: no correct answers", b.Kind)
	}
	if len(options) <= len(answers) {
		return nil, fmt.Errorf("%s: need at least one wrong option", b.Kind)
	}
	for _, a := range answers {
		if !containsFold(options, a) {
			return nil, fmt.Errorf("%s: answer %q missing from options", b.Kind, a)
		}
	}
	b.Variant = VariantMultiSelect
	return &MultiSelect{Base: b, Options: options, Answers: answers}, nil
}

func newTrueFalse(b Base, statement string, truth bool) (*TrueFalse, error) {
	if err := checkBase(b); err != nil {
		return nil, err
	}
	if strings.TrimSpace(statement) == "" {
		return nil, fmt.Errorf("%s: empty statement", b.Kind)
	}
	b.Variant = VariantTrueFalse
	return &TrueFalse{Base: b, Statement: statement, Truth: truth}, nil
}

func newMatching(b Base, pairs []Pair, rights []string) (*Matching, error) {
	if err := checkBase(b); err != nil {
		return nil, err
	}
	if len(pairs) < minMatchPairs {
		return nil, ErrUnavailable
	}
	if len(rights) != len(pairs) {
		return nil, fmt.Errorf("%s: %d right values for %d pairs", b.Kind, len(rights), len(pairs))
	}
	b.Variant = VariantMatching
	return &Matching{Base: b, Pairs: pairs, Rights: rights}, nil
}

func newClassComparison(b Base, options []string, answer string) (*ClassComparison, error) {
	if err := checkChoice(b, options, answer); err != nil {
		return nil, err
	}
	b.Variant = VariantClassComparison
	return &ClassComparison{Base: b, Options: options, Answer: answer}, nil
}

func newPearl(b Base, title, body string, options []string, answer string) (*Pearl, error) {
	if b.Phase == PhaseIntro {
		if err := checkBase(b); err != nil {
			return nil, err
		}
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("%s: empty body", b.Kind)
		}
		if len(options) > 0 {
			if err := checkChoice(b, options, answer); err != nil {
				return nil, err
			}
		}
	} else if err := checkChoice(b, options, answer); err != nil {
		return nil, err
	}
	b.Variant = VariantPearl
	return &Pearl{Base: b, Title: title, Body: body, Options: options, Answer: answer}, nil
}
