package mapreduce

import "github.com/MrDoghead/COMP90024-project1/models"

// Reduce aggregates a slice of frequency maps into a single map.
// Counts for the same token are summed; order of the inputs does not matter.
func Reduce(intermediate []models.FrequencyMap) models.FrequencyMap {
	finalResults := make(models.FrequencyMap)

	for _, counts := range intermediate {
		for token, count := range counts {
			finalResults[token] += count
		}
	}

	return finalResults
}

// ReduceTallies merges per-worker tallies into the global tally. Nil entries are skipped.
func ReduceTallies(locals []*models.Tally) *models.Tally {
	hashtags := make([]models.FrequencyMap, 0, len(locals))
	languages := make([]models.FrequencyMap, 0, len(locals))
	for _, t := range locals {
		if t == nil {
			continue
		}
		hashtags = append(hashtags, t.Hashtags)
		languages = append(languages, t.Languages)
	}

	return &models.Tally{
		Hashtags:  Reduce(hashtags),
		Languages: Reduce(languages),
	}
}
