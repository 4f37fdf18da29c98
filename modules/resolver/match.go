package resolver

import (
	"math"
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/guarzo/splitwise-mcp/common/model"
)

// Jaro-Winkler settings: the prefix bonus covers up to four characters and is
// applied whatever the base Jaro score is.
const (
	winklerPrefixSize     = 4
	winklerBoostThreshold = 0.0
)

// Normalize lowercases s, splits it on whitespace, sorts the words and joins
// them with single spaces, so word order does not affect the score.
func Normalize(s string) string {
	words := strings.Fields(strings.ToLower(s))
	sort.Strings(words)
	return strings.Join(words, " ")
}

// Score rates how well name matches query, from 0 to 100.
func Score(query, name string) int {
	sim := smetrics.JaroWinkler(Normalize(query), Normalize(name), winklerBoostThreshold, winklerPrefixSize)
	return int(math.Round(sim * 100))
}

// Match scores every entity against query and returns those scoring at least
// threshold, best first. Equal scores keep their input order.
func Match(query string, entities []model.Entity, threshold int) []model.Candidate {
	scored := make([]model.Candidate, 0, len(entities))
	for _, e := range entities {
		scored = append(scored, model.Candidate{
			ID:         e.ID,
			Name:       e.Name,
			MatchScore: Score(query, e.Name),
		})
	}
	return rank(scored, threshold)
}

func rank(scored []model.Candidate, threshold int) []model.Candidate {
	kept := make([]model.Candidate, 0, len(scored))
	for _, c := range scored {
		if c.MatchScore >= threshold {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].MatchScore > kept[j].MatchScore
	})
	return kept
}
