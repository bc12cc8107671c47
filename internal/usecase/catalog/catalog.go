// Package catalog loads and holds the regex rule set, exclusion lists, and
// false-positive substrings that the File Scanner (C3) applies to every line
// of every scanned file.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	rulesFile              = "rules.yml"
	excludedFilesFile      = "excluded_files.yml"
	excludedExtensionsFile = "excluded_extensions.yml"
	falsePositiveFile      = "false-positive.yml"
	frameworksFile         = "frameworks.yml"
)

type rulesDoc struct {
	Rules []entity.Rule `yaml:"rules"`
}

type excludedFilesDoc struct {
	ExcludedFiles []string `yaml:"excluded_files"`
}

type excludedExtensionsDoc struct {
	ExcludedExtensions []string `yaml:"excluded_extensions"`
}

type falsePositiveDoc struct {
	FalsePositive []string `yaml:"false_positive"`
}

type frameworksDoc struct {
	Frameworks []entity.FrameworkRule `yaml:"frameworks"`
}

// Catalog is the immutable bundle described in spec.md §4.1. Every slice and
// set is built once at Load and never mutated afterward, so a *Catalog is
// safe for unsynchronized concurrent reads.
type Catalog struct {
	Rules              []entity.CompiledRule
	ExcludedFiles      map[string]struct{}
	ExcludedExtensions map[string]struct{}
	FalsePositives     []string // lower-cased, for substring containment checks
	Frameworks         []entity.FrameworkRule
}

// Load reads the four on-disk YAML files under dir and compiles the rule
// patterns. A rule whose pattern fails to compile is logged and dropped; the
// catalog load never fails the process because of one bad rule (spec.md §4.1).
func Load(logger *zap.Logger, dir string) (*Catalog, error) {
	rules, err := loadRules(logger, filepath.Join(dir, rulesFile))
	if err != nil {
		return nil, err
	}

	excludedFiles, err := loadExcludedFiles(filepath.Join(dir, excludedFilesFile))
	if err != nil {
		return nil, err
	}

	excludedExtensions, err := loadExcludedExtensions(filepath.Join(dir, excludedExtensionsFile))
	if err != nil {
		return nil, err
	}

	falsePositives, err := loadFalsePositives(filepath.Join(dir, falsePositiveFile))
	if err != nil {
		return nil, err
	}

	frameworks, err := loadFrameworks(logger, filepath.Join(dir, frameworksFile))
	if err != nil {
		return nil, err
	}

	return &Catalog{
		Rules:              rules,
		ExcludedFiles:      excludedFiles,
		ExcludedExtensions: excludedExtensions,
		FalsePositives:     falsePositives,
		Frameworks:         frameworks,
	}, nil
}

// loadFrameworks is tolerant of a missing frameworks.yml: framework detection
// is an enrichment of the scan report, not a correctness-critical input, so
// an absent file degrades to "no frameworks detected" rather than failing
// catalog load.
func loadFrameworks(logger *zap.Logger, path string) ([]entity.FrameworkRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if logger != nil {
				logger.Warn("frameworks.yml not found, framework detection disabled", zap.String("path", path))
			}
			return nil, nil
		}
		return nil, err
	}

	var doc frameworksDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Frameworks, nil
}

func loadRules(logger *zap.Logger, path string) ([]entity.CompiledRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc rulesDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	compiled := make([]entity.CompiledRule, 0, len(doc.Rules))
	for _, rule := range doc.Rules {
		if err := rule.Validate(context.Background()); err != nil {
			if logger != nil {
				logger.Warn("dropping rule with invalid fields",
					zap.String("rule_id", rule.ID), zap.Error(err))
			}
			continue
		}

		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			if logger != nil {
				logger.Warn("dropping rule with uncompilable pattern",
					zap.String("rule_id", rule.ID), zap.Error(err))
			}
			continue
		}

		compiled = append(compiled, entity.CompiledRule{Rule: rule, Regexp: re})
	}

	return compiled, nil
}

func loadExcludedFiles(path string) (map[string]struct{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc excludedFilesDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(doc.ExcludedFiles))
	for _, name := range doc.ExcludedFiles {
		set[strings.ToLower(name)] = struct{}{}
	}
	return set, nil
}

func loadExcludedExtensions(path string) (map[string]struct{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc excludedExtensionsDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(doc.ExcludedExtensions))
	for _, ext := range doc.ExcludedExtensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set, nil
}

func loadFalsePositives(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc falsePositiveDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	lowered := make([]string, len(doc.FalsePositive))
	for i, s := range doc.FalsePositive {
		lowered[i] = strings.ToLower(s)
	}
	return lowered, nil
}

// IsFalsePositive reports whether context contains any false-positive
// substring, case-insensitively (spec.md §4.3, testable property in §8).
func (c *Catalog) IsFalsePositive(context string) bool {
	lower := strings.ToLower(context)
	for _, fp := range c.FalsePositives {
		if strings.Contains(lower, fp) {
			return true
		}
	}
	return false
}

// FullExtension returns the longest trailing dot-prefixed extension of name,
// lower-cased (matches up to two dotted segments, e.g. "archive.tar.gz" ->
// ".tar.gz"), mirroring original_source's get_full_extension.
func FullExtension(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) <= 1 {
		return ""
	}
	if len(parts) == 2 {
		return "." + strings.ToLower(parts[1])
	}
	return "." + strings.ToLower(strings.Join(parts[len(parts)-2:], "."))
}

// IsExcluded reports whether basename or its extension is in the catalog's
// exclusion sets.
func (c *Catalog) IsExcluded(basename string) bool {
	if _, ok := c.ExcludedFiles[strings.ToLower(basename)]; ok {
		return true
	}
	ext := FullExtension(basename)
	if _, ok := c.ExcludedExtensions[ext]; ok {
		return true
	}
	// Also check the single trailing extension, since excluded_extensions.yml
	// entries are written as single ".ext" values even when FullExtension
	// would greedily capture two dotted segments.
	if idx := strings.LastIndex(basename, "."); idx >= 0 {
		single := strings.ToLower(basename[idx:])
		if _, ok := c.ExcludedExtensions[single]; ok {
			return true
		}
	}
	return false
}
