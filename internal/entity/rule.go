package entity

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Rule is one regex rule from Settings/rules.yml. Pattern is compiled once at
// catalog load time; a Rule whose pattern fails to compile never reaches a
// CompiledRule and is dropped with a warning (spec.md §4.1).
type Rule struct {
	ID       string `yaml:"id"`
	Message  string `yaml:"message"`
	Pattern  string `yaml:"pattern"`
	Severity string `yaml:"severity"`
}

// Validate checks the fields that must be present regardless of whether the
// pattern compiles; pattern compilability is checked separately by the
// catalog loader since a compile failure is a warning, not a validation error.
func (r Rule) Validate(ctx context.Context) error {
	return validation.ValidateStructWithContext(ctx, &r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.Pattern, validation.Required),
	)
}

// CompiledRule pairs a Rule with its compiled pattern; only CompiledRules are
// held by the catalog after load.
type CompiledRule struct {
	Rule
	Regexp *regexp.Regexp
}
