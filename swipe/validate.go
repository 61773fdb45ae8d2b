package swipe

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 10_000
	maxFieldLen       = 1_000
	maxListItems      = 50
)

// User text is stored exactly as submitted. Whitespace is only trimmed to
// decide whether a required field is blank; escaping is the renderer's job.

func checkText(field string, s string, maxRunes int) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(s) > maxRunes {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, maxRunes)
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// checkOptional validates an optional scalar and returns a copy of it.
func checkOptional(field string, p *string) (*string, error) {
	if p == nil {
		return nil, nil
	}
	if err := checkText(field, *p, maxFieldLen); err != nil {
		return nil, err
	}
	v := *p
	return &v, nil
}

// checkList validates a list and returns a copy in the submitted order.
func checkList(field string, items []string) ([]string, error) {
	if len(items) > maxListItems {
		return nil, fmt.Errorf("%w: %s exceeds %d items", ErrInvalidInput, field, maxListItems)
	}
	for i, it := range items {
		if err := checkText(fmt.Sprintf("%s[%d]", field, i), it, maxFieldLen); err != nil {
			return nil, err
		}
	}
	out := make([]string, len(items))
	copy(out, items)
	return out, nil
}

func validateTitle(s string) (string, error) {
	if isBlank(s) {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := checkText("title", s, maxTitleLen); err != nil {
		return "", err
	}
	return s, nil
}

func validateDescription(s string) (string, error) {
	if isBlank(s) {
		return "", fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if err := checkText("description", s, maxDescriptionLen); err != nil {
		return "", err
	}
	return s, nil
}

// normalizeInput validates a creation payload and returns a copy with nil
// lists replaced by empty ones.
func normalizeInput(in IdeaInput) (IdeaInput, error) {
	var err error
	out := IdeaInput{}
	if out.Title, err = validateTitle(in.Title); err != nil {
		return out, err
	}
	if out.Description, err = validateDescription(in.Description); err != nil {
		return out, err
	}
	optionals := []struct {
		name string
		src  *string
		dst  **string
	}{
		{"market_size", in.MarketSize, &out.MarketSize},
		{"market_potential", in.MarketPotential, &out.MarketPotential},
		{"financial_requirement", in.FinancialRequirement, &out.FinancialRequirement},
		{"timeline", in.Timeline, &out.Timeline},
		{"category", in.Category, &out.Category},
	}
	for _, o := range optionals {
		if *o.dst, err = checkOptional(o.name, o.src); err != nil {
			return out, err
		}
	}
	if out.TechnicalRequirements, err = checkList("technical_requirements", in.TechnicalRequirements); err != nil {
		return out, err
	}
	if out.Challenges, err = checkList("challenges", in.Challenges); err != nil {
		return out, err
	}
	return out, nil
}

// applyPatch validates p and applies its set fields to idea.
func applyPatch(idea *Idea, p IdeaPatch) error {
	var err error
	if p.Title.Set {
		if p.Title.Value == nil {
			return fmt.Errorf("%w: title cannot be null", ErrInvalidInput)
		}
		if idea.Title, err = validateTitle(*p.Title.Value); err != nil {
			return err
		}
	}
	if p.Description.Set {
		if p.Description.Value == nil {
			return fmt.Errorf("%w: description cannot be null", ErrInvalidInput)
		}
		if idea.Description, err = validateDescription(*p.Description.Value); err != nil {
			return err
		}
	}
	optionals := []struct {
		name string
		src  OptionalString
		dst  **string
	}{
		{"market_size", p.MarketSize, &idea.MarketSize},
		{"market_potential", p.MarketPotential, &idea.MarketPotential},
		{"financial_requirement", p.FinancialRequirement, &idea.FinancialRequirement},
		{"timeline", p.Timeline, &idea.Timeline},
		{"category", p.Category, &idea.Category},
	}
	for _, o := range optionals {
		if !o.src.Set {
			continue
		}
		if *o.dst, err = checkOptional(o.name, o.src.Value); err != nil {
			return err
		}
	}
	if p.TechnicalRequirements.Set {
		if idea.TechnicalRequirements, err = checkList("technical_requirements", p.TechnicalRequirements.Value); err != nil {
			return err
		}
	}
	if p.Challenges.Set {
		if idea.Challenges, err = checkList("challenges", p.Challenges.Value); err != nil {
			return err
		}
	}
	return nil
}

func validateAction(action string) error {
	switch action {
	case ActionLeft, ActionRight:
		return nil
	default:
		return fmt.Errorf("%w: action must be %q or %q, got %q", ErrInvalidInput, ActionLeft, ActionRight, action)
	}
}

// validateComment enforces the non-blank rule and the byte limit on content.
func validateComment(content string, maxBytes int) (string, error) {
	if isBlank(content) {
		return "", fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if !utf8.ValidString(content) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidInput)
	}
	if len(content) > maxBytes {
		return "", fmt.Errorf("%w: content exceeds %d bytes", ErrInvalidInput, maxBytes)
	}
	return content, nil
}
