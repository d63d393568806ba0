package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/MrDoghead/COMP90024-project1/models"
)

func sample() Report {
	return New("tinyTwitter.json", 10,
		[]models.RankedEntry{{Token: "x", Count: 2}, {Token: "y", Count: 1}},
		[]models.RankedEntry{{Token: "en", Count: 2}, {Token: "xx-bogus", Count: 1}},
	)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, []Report{sample()}); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	want := strings.Join([]string{
		"For dataset tinyTwitter.json :",
		"Top 10 hashtags:",
		"0. #x, 2",
		"1. #y, 1",
		"",
		"Top 10 languages:",
		"0. English(en), 2",
		"1. Undetermined(xx-bogus), 1",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("WriteText() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteText_SeparatesDatasets(t *testing.T) {
	a := New("a.json", 1, nil, nil)
	b := New("b.json", 1, nil, nil)

	var buf bytes.Buffer
	if err := WriteText(&buf, []Report{a, b}); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Top 1 languages:\n\nFor dataset b.json :") {
		t.Errorf("datasets not separated by a blank line:\n%s", buf.String())
	}
}

func TestWrite_Structured(t *testing.T) {
	for _, format := range []string{"yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, format, []Report{sample()}); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			var decoded struct {
				Reports []Report `json:"reports" yaml:"reports"`
			}
			var err error
			if format == "yaml" {
				err = yaml.Unmarshal(buf.Bytes(), &decoded)
			} else {
				err = json.Unmarshal(buf.Bytes(), &decoded)
			}
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if len(decoded.Reports) != 1 || decoded.Reports[0].Languages[0].Name != "English" {
				t.Errorf("decoded = %+v", decoded)
			}
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", nil); err == nil {
		t.Error("Write() accepted xml")
	}
}
