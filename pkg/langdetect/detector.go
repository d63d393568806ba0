// Package langdetect guesses the language of post text for records that declare none.
package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector wraps a lingua detector and reports ISO 639-1 codes in lower case.
type Detector struct {
	detector      lingua.LanguageDetector
	minConfidence float64
}

// New builds a detector over the given languages, or all supported languages when none
// are given. Guesses below minConfidence are discarded.
func New(minConfidence float64, languages ...lingua.Language) *Detector {
	var builder lingua.LanguageDetectorBuilder
	if len(languages) == 0 {
		builder = lingua.NewLanguageDetectorBuilder().FromAllLanguages()
	} else {
		builder = lingua.NewLanguageDetectorBuilder().FromLanguages(languages...)
	}

	return &Detector{
		detector:      builder.WithLowAccuracyMode().Build(),
		minConfidence: minConfidence,
	}
}

// Detect implements extractor.LanguageDetector.
func (d *Detector) Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	if d.minConfidence > 0 && d.detector.ComputeLanguageConfidence(text, lang) < d.minConfidence {
		return "", false
	}

	code := strings.ToLower(lang.IsoCode639_1().String())
	return code, code != ""
}
