package veto

import (
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var DefaultPool = []string{"Ancient", "Anubis", "Dust2", "Inferno", "Mirage", "Nuke", "Train"}

// PoolOrDefault cleans a configured map pool, falling back to DefaultPool when it is empty
func PoolOrDefault(pool []string) []string {
	var cleaned []string
	for _, name := range pool {
		name = strings.TrimSpace(name)
		if name == "" || slices.ContainsFunc(cleaned, func(c string) bool { return strings.EqualFold(c, name) }) {
			continue
		}
		cleaned = append(cleaned, name)
	}
	if len(cleaned) == 0 {
		return slices.Clone(DefaultPool)
	}
	return cleaned
}

// matchMapName finds the map a player meant. An exact case-insensitive name wins,
// otherwise the input must fuzzily match exactly one candidate.
func matchMapName(name string, candidates []string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, c := range candidates {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) != 1 {
		return "", false
	}
	return ranks[0].Target, true
}
