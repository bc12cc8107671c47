// Package classifier implements the Secret Classifier (C2): a process-wide
// singleton that loads or trains a character-n-gram TF-IDF vectorizer and a
// logistic-regression model, then batch-scores candidate Findings produced
// by the File Scanner.
package classifier

import (
	"bufio"
	"encoding/gob"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	applog "github.com/ILYXAAA/SecretsScanner-service/internal/log"
	"go.uber.org/zap"
)

const (
	trainSeed      = 42
	testSplit      = 0.2
	highConfidence = 0.70
)

// artifacts is the gob-encoded on-disk representation of a trained model.
// The vocabulary is stored as a slice rather than the fitted map so decoding
// does not depend on map iteration order.
type artifacts struct {
	Vocab []string
	IDF   []float64
	W     []float64
	Bias  float64
}

// Classifier is the singleton handle returned by Initialize. It is
// read-only after construction and safe for concurrent use by multiple
// CPU-bound workers, per spec.md §4.2.
type Classifier struct {
	logger *zap.Logger
	vec    *vectorizer
	model  *logisticRegression
}

var (
	instance *Classifier
	once     sync.Once
	initErr  error
)

// Paths configures where persisted artifacts and training corpora live.
type Paths struct {
	ModelPath      string
	VectorizerPath string
	SecretsDataset string
	NonSecretsDataset string
}

// Initialize loads the singleton classifier, training it on first use if no
// persisted artifacts are found. Safe to call more than once; only the
// first call does any work (idempotent training, per spec.md §3).
func Initialize(logger *zap.Logger, paths Paths) (*Classifier, error) {
	once.Do(func() {
		instance, initErr = load(logger, paths)
	})
	return instance, initErr
}

func load(logger *zap.Logger, paths Paths) (*Classifier, error) {
	start := time.Now()

	if fileExists(paths.ModelPath) && fileExists(paths.VectorizerPath) {
		art, err := loadArtifacts(paths.ModelPath, paths.VectorizerPath)
		if err != nil {
			return nil, err
		}
		c := fromArtifacts(logger, art)
		applog.InfoClassify(logger, "classifier model loaded from disk", "", 0)
		logger.Info("model load duration", zap.Duration("elapsed", time.Since(start)))
		return c, nil
	}

	applog.InfoClassify(logger, "no persisted model found, training from datasets", "", 0)
	c, err := train(logger, paths)
	if err != nil {
		return nil, err
	}
	logger.Info("model train duration", zap.Duration("elapsed", time.Since(start)))
	return c, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// train reads the two line-per-sample corpora, shuffles deterministically,
// splits 80/20, fits the vectorizer and logistic-regression model on the
// training split, and persists both artifacts atomically.
func train(logger *zap.Logger, paths Paths) (*Classifier, error) {
	secrets, err := readLines(paths.SecretsDataset)
	if err != nil {
		return nil, err
	}
	nonSecrets, err := readLines(paths.NonSecretsDataset)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(secrets)+len(nonSecrets))
	labels := make([]int, 0, len(secrets)+len(nonSecrets))
	texts = append(texts, secrets...)
	for range secrets {
		labels = append(labels, 1)
	}
	texts = append(texts, nonSecrets...)
	for range nonSecrets {
		labels = append(labels, 0)
	}

	rng := rand.New(rand.NewSource(trainSeed))
	rng.Shuffle(len(texts), func(i, j int) {
		texts[i], texts[j] = texts[j], texts[i]
		labels[i], labels[j] = labels[j], labels[i]
	})

	splitIdx := int(float64(len(texts)) * (1 - testSplit))
	trainTexts := texts[:splitIdx]
	trainLabels := labels[:splitIdx]

	vec := fitVectorizer(trainTexts)
	X := make([]map[int]float64, len(trainTexts))
	for i, t := range trainTexts {
		X[i] = vec.transform(t)
	}
	model := fitLogisticRegression(len(vec.vocab), X, trainLabels)

	c := &Classifier{logger: logger, vec: vec, model: model}

	if err := persist(paths, c); err != nil {
		return nil, err
	}

	return c, nil
}

func persist(paths Paths, c *Classifier) error {
	vocabList := make([]string, len(c.vec.vocab))
	for g, idx := range c.vec.vocab {
		vocabList[idx] = g
	}

	art := artifacts{
		Vocab: vocabList,
		IDF:   c.vec.idf,
		W:     c.model.weights,
		Bias:  c.model.bias,
	}

	if err := os.MkdirAll(filepath.Dir(paths.ModelPath), 0o755); err != nil {
		return err
	}

	tmpModel := paths.ModelPath + ".tmp"
	if err := writeGob(tmpModel, art); err != nil {
		return err
	}
	return os.Rename(tmpModel, paths.ModelPath)
}

func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(v)
}

func loadArtifacts(modelPath, _ string) (artifacts, error) {
	var art artifacts
	f, err := os.Open(modelPath)
	if err != nil {
		return art, err
	}
	defer f.Close()
	err = gob.NewDecoder(f).Decode(&art)
	return art, err
}

func fromArtifacts(logger *zap.Logger, art artifacts) *Classifier {
	vocab := make(map[string]int, len(art.Vocab))
	for idx, g := range art.Vocab {
		vocab[g] = idx
	}
	return &Classifier{
		logger: logger,
		vec:    &vectorizer{vocab: vocab, idf: art.IDF},
		model:  &logisticRegression{weights: art.W, bias: art.Bias},
	}
}

// Classify implements the batch scoring API of spec.md §4.2. It mutates and
// returns the same slice; findings are processed independently and the
// function never returns an error to the caller — on any internal failure
// every finding instead falls back to severity High / confidence 1.00.
func (c *Classifier) Classify(findings []entity.Finding) []entity.Finding {
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Error("classifier panic recovered, defaulting findings to High",
					zap.Any("panic", r))
			}
			for i := range findings {
				findings[i].Severity = entity.SeverityHigh
				findings[i].Confidence = 1.0
			}
		}
	}()

	for i := range findings {
		c.classifyOne(&findings[i])
	}

	applog.InfoClassify(c.logger, "batch classification complete", "", len(findings))
	return findings
}

func (c *Classifier) classifyOne(f *entity.Finding) {
	if f.IsClassified() {
		return
	}

	if isSentinelText(f.Secret) {
		f.Confidence = 0.50
		f.Severity = entity.SeverityPotential
		f.SecretConfidence = 0.50
		return
	}

	secretVec := c.vec.transform(f.Secret)
	pSecret := c.model.predictProba(secretVec)
	f.SecretConfidence = pSecret
	f.SecretPrediction = c.model.predict(secretVec)

	final := pSecret
	if strings.TrimSpace(f.Context) != "" {
		contextVec := c.vec.transform(f.Context)
		pContext := c.model.predictProba(contextVec)
		f.ContextConfidence = pContext
		f.ContextPrediction = c.model.predict(contextVec)
		final = (pSecret + pContext) / 2
		f.ConfidenceAveraged = true
	}

	f.Confidence = final
	if final > highConfidence {
		f.Severity = entity.SeverityHigh
	} else {
		f.Severity = entity.SeverityPotential
	}
}

func isSentinelText(secret string) bool {
	return strings.Contains(secret, entity.SentinelLineTooLong) ||
		strings.Contains(secret, entity.SentinelTooManySecrets)
}
