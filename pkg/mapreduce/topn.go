package mapreduce

import (
	"fmt"
	"sort"

	"github.com/MrDoghead/COMP90024-project1/models"
)

// TopN returns the n most frequent tokens, highest count first.
// Equal counts are ordered by token, byte-wise ascending, so the result does not
// depend on map iteration order. n <= 0 yields an empty ranking.
func TopN(counts models.FrequencyMap, n int) []models.RankedEntry {
	if n <= 0 {
		return []models.RankedEntry{}
	}

	ss := make([]models.RankedEntry, 0, len(counts))
	for k, v := range counts {
		ss = append(ss, models.RankedEntry{Token: k, Count: v})
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Count != ss[j].Count {
			return ss[i].Count > ss[j].Count
		}
		return ss[i].Token < ss[j].Token
	})

	limit := n
	if len(ss) < n {
		limit = len(ss)
	}

	return ss[:limit]
}

// TopKeywords returns the top N tokens as "token:count" strings (e.g., "auspol:1153").
func TopKeywords(counts models.FrequencyMap, n int) []string {
	top := TopN(counts, n)

	keywords := make([]string, len(top))
	for i, e := range top {
		keywords[i] = fmt.Sprintf("%s:%d", e.Token, e.Count)
	}

	return keywords
}
