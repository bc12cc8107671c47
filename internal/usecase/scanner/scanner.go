// Package scanner implements the File Scanner (C3): a directory walk that
// applies the Rule Catalog's regex rules line-by-line under safety caps, and
// derives the auxiliary language and framework detection maps from the same
// walk.
package scanner

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/catalog"
	"github.com/samber/lo"
	"golang.org/x/sync/semaphore"
)

const (
	defaultBatchSize         = 5
	defaultMaxLineLength     = 15_000
	defaultMaxSecretsPerFile = 50
	topHitsCap               = 100
)

// Options tunes the safety caps and concurrency of a single scan; callers
// populate it from config.Config.Scan.
type Options struct {
	MaxLineLength     int
	MaxSecretsPerFile int
	BatchSize         int
}

func (o Options) withDefaults() Options {
	if o.MaxLineLength <= 0 {
		o.MaxLineLength = defaultMaxLineLength
	}
	if o.MaxSecretsPerFile <= 0 {
		o.MaxSecretsPerFile = defaultMaxSecretsPerFile
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	return o
}

// Result is the aggregate output of a directory scan, feeding directly into
// entity.ScanReport.
type Result struct {
	Findings      []entity.Finding
	FilesScanned  int
	FilesExcluded int
	Languages     map[string]entity.LanguageStats
	Frameworks    []entity.FrameworkHit
}

// ProgressFunc is invoked after each processed batch with the running count
// of files scanned so far, letting the caller emit partial-progress
// callbacks (spec.md supplemented feature; grounded on original_source's
// scan_directory partial-result posting).
type ProgressFunc func(filesScanned, totalFiles int)

// Scan walks root, applying cat's exclusion and rule sets, and returns every
// candidate Finding plus the auxiliary detection maps. progress may be nil.
func Scan(ctx context.Context, cat *catalog.Catalog, root string, opts Options, progress ProgressFunc) (Result, error) {
	opts = opts.withDefaults()

	files, excluded, err := walk(root, cat)
	if err != nil {
		return Result{}, err
	}

	findings, err := scanFiles(ctx, cat, root, files, opts, progress)
	if err != nil {
		return Result{}, err
	}

	languages := buildLanguageHistogram(files, root)
	frameworks := detectFrameworks(cat.Frameworks, files, root)

	return Result{
		Findings:      findings,
		FilesScanned:  len(files),
		FilesExcluded: excluded,
		Languages:     languages,
		Frameworks:    frameworks,
	}, nil
}

func walk(root string, cat *catalog.Catalog) (files []string, excluded int, err error) {
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		if cat.IsExcluded(filepath.Base(path)) {
			excluded++
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, excluded, err
}

func scanFiles(ctx context.Context, cat *catalog.Catalog, root string, files []string, opts Options, progress ProgressFunc) ([]entity.Finding, error) {
	sem := semaphore.NewWeighted(int64(opts.BatchSize))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var all []entity.Finding
	var processed int

	for _, path := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		go func(path string) {
			defer sem.Release(1)
			defer wg.Done()

			findings := scanFile(cat, root, path, opts)

			mu.Lock()
			all = append(all, findings...)
			processed++
			n := processed
			mu.Unlock()

			if progress != nil && n%max(1, len(files)/10) == 0 {
				progress(n, len(files))
			}
		}(path)
	}

	wg.Wait()
	return all, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// scanFile implements the per-file caps and match semantics of spec.md §4.3.
// It never returns an error: a read failure yields zero findings for that
// file, matching original_source's own log-and-continue behavior.
func scanFile(cat *catalog.Catalog, root, path string, opts Options) []entity.Finding {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	relPath := normalizeRelPath(root, path)

	var tooLong []entity.Finding
	var matches []entity.Finding

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if len(line) > opts.MaxLineLength {
			tooLong = append(tooLong, tooLongLineFinding(relPath, lineNum, line, opts.MaxLineLength))
			continue
		}

		if finding, ok := matchLine(cat, relPath, lineNum, line); ok {
			matches = append(matches, finding)
		}
	}

	if len(matches) > opts.MaxSecretsPerFile {
		return []entity.Finding{tooManySecretsFinding(relPath, matches)}
	}

	results := tooLong
	results = append(results, matches...)
	return results
}

func normalizeRelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = strings.TrimPrefix(path, root)
	}
	return filepath.ToSlash(rel)
}

func tooLongLineFinding(path string, line int, raw string, maxLen int) entity.Finding {
	sum := md5.Sum([]byte(raw))
	hash := hex.EncodeToString(sum[:])
	return entity.Finding{
		Path: path,
		Line: line,
		Secret: fmt.Sprintf("%s более %d символов. Проверьте строку вручную. Хеш строки: %s",
			entity.SentinelLineTooLong, maxLen, hash),
		Context:  fmt.Sprintf("Строка %d содержит большое количество символов. Длина: %d.", line, len(raw)),
		Type:     "Too Long Line",
		Severity: entity.SeverityPotential,
	}
}

func tooManySecretsFinding(path string, matches []entity.Finding) entity.Finding {
	secrets := make([]string, len(matches))
	for i, m := range matches {
		secrets[i] = m.Secret
	}
	joined := strings.Join(secrets, "\n")
	sum := md5.Sum([]byte(joined))
	hash := hex.EncodeToString(sum[:])

	return entity.Finding{
		Path: path,
		Line: 0,
		Secret: fmt.Sprintf("%s найдено более %d секретов. Проверьте файл вручную. Хеш всех секретов: %s",
			entity.SentinelTooManySecrets, len(matches), hash),
		Context:  fmt.Sprintf("Найдено секретов: %d\nСписок найденных секретов ниже:\n%s", len(matches), joined),
		Type:     "Too Many Secrets",
		Severity: entity.SeverityHigh,
	}
}

// matchLine applies every catalog rule in order and returns the first match
// that is not a false positive, implementing "first matching rule wins per
// line-token".
func matchLine(cat *catalog.Catalog, path string, line int, raw string) (entity.Finding, bool) {
	context := strings.TrimSpace(raw)

	for _, rule := range cat.Rules {
		loc := rule.Regexp.FindStringIndex(raw)
		if loc == nil {
			continue
		}
		secret := raw[loc[0]:loc[1]]

		if cat.IsFalsePositive(context) {
			continue
		}

		return entity.Finding{
			Path:       path,
			Line:       line,
			Secret:     secret,
			Context:    context,
			Type:       rule.Message,
			Severity:   entity.SeverityUnclassified,
			Confidence: 1.0,
		}, true
	}

	return entity.Finding{}, false
}

func buildLanguageHistogram(files []string, root string) map[string]entity.LanguageStats {
	extByLang := make(map[string]map[string]struct{})

	for _, path := range files {
		ext := catalog.FullExtension(filepath.Base(path))
		lang := languageForExtension(ext)
		if ext == "" {
			continue
		}
		if extByLang[lang] == nil {
			extByLang[lang] = make(map[string]struct{})
		}
		extByLang[lang][ext] = struct{}{}
	}

	counts := make(map[string]int)
	for _, path := range files {
		ext := catalog.FullExtension(filepath.Base(path))
		lang := languageForExtension(ext)
		counts[lang]++
	}

	stats := make(map[string]entity.LanguageStats, len(counts))
	for lang, count := range counts {
		exts := lo.Keys(extByLang[lang])
		sort.Strings(exts)
		stats[lang] = entity.LanguageStats{Files: count, Extensions: exts}
	}
	return stats
}

func detectFrameworks(rules []entity.FrameworkRule, files []string, root string) []entity.FrameworkHit {
	var hits []entity.FrameworkHit

	for _, rule := range rules {
		hits = append(hits, detectManifestDependencies(rule, files, root)...)
		hits = append(hits, detectConfigFiles(rule, files, root)...)
		hits = append(hits, detectCodePatterns(rule, files, root)...)
	}
	return hits
}

func detectManifestDependencies(rule entity.FrameworkRule, files []string, root string) []entity.FrameworkHit {
	if len(rule.ManifestFiles) == 0 || len(rule.Dependencies) == 0 {
		return nil
	}
	manifestSet := lo.SliceToMap(rule.ManifestFiles, func(s string) (string, struct{}) {
		return strings.ToLower(s), struct{}{}
	})

	var matchedFiles []string
	depsSeen := make(map[string]struct{})

	for _, path := range files {
		if _, ok := manifestSet[strings.ToLower(filepath.Base(path))]; !ok {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		text := string(content)
		found := false
		for _, dep := range rule.Dependencies {
			if strings.Contains(text, dep) {
				depsSeen[dep] = struct{}{}
				found = true
			}
		}
		if found {
			matchedFiles = append(matchedFiles, normalizeRelPath(root, path))
		}
	}

	if len(matchedFiles) == 0 {
		return nil
	}

	deps := lo.Keys(depsSeen)
	sort.Strings(deps)
	n, truncated := capHits(&matchedFiles)

	return []entity.FrameworkHit{{
		Framework:    rule.Name,
		Kind:         "manifest_dependency",
		Message:      fmt.Sprintf("In %s manifests found dependency %s (%s)", countLabel(n, truncated), rule.Name, strings.Join(deps, ", ")),
		Files:        matchedFiles,
		Truncated:    truncated,
		Dependencies: deps,
	}}
}

func detectConfigFiles(rule entity.FrameworkRule, files []string, root string) []entity.FrameworkHit {
	if len(rule.ConfigFiles) == 0 {
		return nil
	}
	configSet := lo.SliceToMap(rule.ConfigFiles, func(s string) (string, struct{}) {
		return strings.ToLower(s), struct{}{}
	})

	var matched []string
	for _, path := range files {
		if _, ok := configSet[strings.ToLower(filepath.Base(path))]; ok {
			matched = append(matched, normalizeRelPath(root, path))
		}
	}
	if len(matched) == 0 {
		return nil
	}

	n, truncated := capHits(&matched)
	return []entity.FrameworkHit{{
		Framework: rule.Name,
		Kind:      "config_file",
		Message:   fmt.Sprintf("Found %s config files for %s", countLabel(n, truncated), rule.Name),
		Files:     matched,
		Truncated: truncated,
	}}
}

func detectCodePatterns(rule entity.FrameworkRule, files []string, root string) []entity.FrameworkHit {
	if len(rule.CodePatterns) == 0 {
		return nil
	}

	var hits []entity.FrameworkHit
	for _, cp := range rule.CodePatterns {
		re, err := regexp.Compile(cp.Pattern)
		if err != nil {
			continue
		}
		extSet := lo.SliceToMap(cp.Extensions, func(s string) (string, struct{}) {
			return strings.ToLower(s), struct{}{}
		})

		var matched []string
		for _, path := range files {
			ext := catalog.FullExtension(filepath.Base(path))
			if _, ok := extSet[ext]; !ok {
				continue
			}
			content, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if re.Match(content) {
				matched = append(matched, normalizeRelPath(root, path))
			}
		}
		if len(matched) == 0 {
			continue
		}

		n, truncated := capHits(&matched)
		hits = append(hits, entity.FrameworkHit{
			Framework: rule.Name,
			Kind:      "code_pattern",
			Message:   fmt.Sprintf("In %s files found mention of %s", countLabel(n, truncated), rule.Name),
			Files:     matched,
			Truncated: truncated,
		})
	}
	return hits
}

func capHits(files *[]string) (count int, truncated bool) {
	count = len(*files)
	if count > topHitsCap {
		*files = (*files)[:topHitsCap]
		return count, true
	}
	return count, false
}

func countLabel(n int, truncated bool) string {
	if truncated {
		return fmt.Sprintf("%d+", topHitsCap)
	}
	return fmt.Sprintf("%d", n)
}
