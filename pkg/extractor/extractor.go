// Package extractor pulls hashtags and the declared language out of one raw input line.
package extractor

import (
	"encoding/json"
	"strings"

	"github.com/MrDoghead/COMP90024-project1/models"
)

// LanguageDetector guesses a language code from free text.
type LanguageDetector interface {
	Detect(text string) (code string, ok bool)
}

// Extractor turns raw lines into records. It is safe for concurrent use
// as long as its LanguageDetector is.
type Extractor struct {
	trim     TrimRule
	detector LanguageDetector
}

type Option func(*Extractor)

func WithTrimRule(rule TrimRule) Option {
	return func(e *Extractor) {
		if rule != nil {
			e.trim = rule
		}
	}
}

// WithLanguageDetector fills in the language of records that declare none.
func WithLanguageDetector(d LanguageDetector) Option {
	return func(e *Extractor) { e.detector = d }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{trim: RowSeparator}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) TrimRule() TrimRule { return e.trim }

// Expected shape: {"doc": {"entities": {"hashtags": [{"text": ...}]}, "lang": ..., "text": ...}}
type row struct {
	Doc json.RawMessage `json:"doc"`
}

type document struct {
	Entities json.RawMessage `json:"entities"`
	Lang     json.RawMessage `json:"lang"`
	Text     json.RawMessage `json:"text"`
}

type entities struct {
	Hashtags json.RawMessage `json:"hashtags"`
}

type hashtag struct {
	Text json.RawMessage `json:"text"`
}

// Extract never fails: malformed JSON, missing levels and wrong types all
// degrade to an empty (or partially empty) record.
func (e *Extractor) Extract(line []byte) models.Record {
	var rec models.Record

	var r row
	if err := json.Unmarshal(e.trim.Trim(line), &r); err != nil || len(r.Doc) == 0 {
		return rec
	}

	var doc document
	if err := json.Unmarshal(r.Doc, &doc); err != nil {
		return rec
	}

	rec.Hashtags = hashtagsOf(doc.Entities)
	rec.Language = stringOf(doc.Lang)

	if rec.Language == "" && e.detector != nil {
		if text := stringOf(doc.Text); text != "" {
			if code, ok := e.detector.Detect(text); ok {
				rec.Language = code
			}
		}
	}

	return rec
}

func hashtagsOf(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var ent entities
	if err := json.Unmarshal(raw, &ent); err != nil || len(ent.Hashtags) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(ent.Hashtags, &items); err != nil {
		return nil
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		var h hashtag
		if err := json.Unmarshal(item, &h); err != nil {
			continue
		}
		if text := stringOf(h.Text); text != "" {
			tags = append(tags, strings.ToLower(text))
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// stringOf returns the JSON string held in raw, or "" for anything else.
func stringOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
