// Package report renders rankings for people (text) and for tools (YAML, JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/languages"
)

// Report is the ranked view of one dataset.
type Report struct {
	RunID     string               `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Dataset   string               `json:"dataset" yaml:"dataset"`
	TopN      int                  `json:"top_n" yaml:"top_n"`
	Workers   int                  `json:"workers,omitempty" yaml:"workers,omitempty"`
	Hashtags  []models.RankedEntry `json:"hashtags" yaml:"hashtags"`
	Languages []LanguageEntry      `json:"languages" yaml:"languages"`
}

type LanguageEntry struct {
	Code  string `json:"code" yaml:"code"`
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// New attaches display names to the language ranking.
func New(dataset string, topN int, hashtags, langs []models.RankedEntry) Report {
	entries := make([]LanguageEntry, len(langs))
	for i, e := range langs {
		entries[i] = LanguageEntry{Code: e.Token, Name: languages.Name(e.Token), Count: e.Count}
	}
	if hashtags == nil {
		hashtags = []models.RankedEntry{}
	}
	return Report{Dataset: dataset, TopN: topN, Hashtags: hashtags, Languages: entries}
}

// Write renders reports in the given format: text, yaml or json.
func Write(w io.Writer, format string, reports []Report) error {
	switch strings.ToLower(format) {
	case "", "text":
		return WriteText(w, reports)
	case "yaml":
		return WriteYAML(w, reports)
	case "json":
		return WriteJSON(w, reports)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteText prints each report as:
//
//	For dataset <name> :
//	Top <N> hashtags:
//	0. #<tag>, <count>
//
//	Top <N> languages:
//	0. <Name>(<code>), <count>
func WriteText(w io.Writer, reports []Report) error {
	var sb strings.Builder
	for i, r := range reports {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "For dataset %s :\n", r.Dataset)
		fmt.Fprintf(&sb, "Top %d hashtags:\n", r.TopN)
		for j, e := range r.Hashtags {
			fmt.Fprintf(&sb, "%d. #%s, %d\n", j, e.Token, e.Count)
		}
		fmt.Fprintf(&sb, "\nTop %d languages:\n", r.TopN)
		for j, e := range r.Languages {
			fmt.Fprintf(&sb, "%d. %s(%s), %d\n", j, e.Name, e.Code, e.Count)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func WriteYAML(w io.Writer, reports []Report) error {
	out, err := yaml.Marshal(map[string]interface{}{"reports": reports})
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func WriteJSON(w io.Writer, reports []Report) error {
	out, err := json.MarshalIndent(map[string]interface{}{"reports": reports}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
