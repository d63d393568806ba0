package models

// FrequencyMap maps a token to its occurrence count.
type FrequencyMap map[string]int

// Total returns the sum of all counts.
func (f FrequencyMap) Total() int {
	total := 0
	for _, n := range f {
		total += n
	}
	return total
}

// Record is what a single input line contributes.
// An empty Language means the line declared none.
type Record struct {
	Hashtags []string
	Language string
}

// IsEmpty reports whether the record carries no data.
func (r Record) IsEmpty() bool {
	return len(r.Hashtags) == 0 && r.Language == ""
}

// Tally is a pair of frequency maps: one per counted attribute.
// A worker owns its local Tally until it hands it to the gather step.
type Tally struct {
	Hashtags  FrequencyMap `json:"hashtags" yaml:"hashtags"`
	Languages FrequencyMap `json:"languages" yaml:"languages"`
}

func NewTally() *Tally {
	return &Tally{
		Hashtags:  make(FrequencyMap),
		Languages: make(FrequencyMap),
	}
}

// Add folds one record into the tally, +1 per hashtag occurrence and +1 for the language.
func (t *Tally) Add(rec Record) {
	for _, tag := range rec.Hashtags {
		t.Hashtags[tag]++
	}
	if rec.Language != "" {
		t.Languages[rec.Language]++
	}
}

// RankedEntry is one row of a ranking.
type RankedEntry struct {
	Token string `json:"token" yaml:"token"`
	Count int    `json:"count" yaml:"count"`
}
