// Command bracketsim builds a bracket from a YAML roster, replays results
// against it and prints the resulting snapshot as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/codec"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type rosterFile struct {
	Players []service.PlayerInput `yaml:"players"`
}

// result is one replayed score. Finalize defaults to true.
type result struct {
	Match    string `yaml:"match"`
	A        string `yaml:"a"`
	B        string `yaml:"b"`
	Finalize *bool  `yaml:"finalize"`
}

type resultsFile struct {
	Forfeits []string `yaml:"forfeits"`
	Results  []result `yaml:"results"`
	// Build the playoffs of a round robin once these results are in
	Playoffs bool `yaml:"playoffs"`
}

type output struct {
	Players       []bracket.Player `json:"players"`
	Bracket       *bracket.Bracket `json:"bracket"`
	Champion      string           `json:"champion,omitempty"`
	Digest        string           `json:"digest"`
	SnapshotBytes int              `json:"snapshotBytes"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "bracketsim:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("bracketsim", pflag.ContinueOnError)
	rosterPath := flags.StringP("roster", "r", "", "YAML roster file (required)")
	resultsPath := flags.String("results", "", "YAML file of results to replay")
	kind := flags.StringP("format", "f", string(bracket.SingleElimination), "single, double or round_robin")
	groups := flags.Int("groups", 1, "number of round robin groups")
	advance := flags.Int("advance", 2, "players advancing from each group")
	legs := flags.Int("legs", 1, "round robin legs, 1 or 2")
	playoff := flags.String("playoff", string(bracket.SingleElimination), "elimination format of the playoffs")
	bestOf := flags.Int("best-of", 0, "series length for every match; 0 uses the tiered defaults")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *rosterPath == "" {
		return fmt.Errorf("--roster is required")
	}

	var roster rosterFile
	if err := readYAML(*rosterPath, &roster); err != nil {
		return err
	}
	players := make([]bracket.Player, len(roster.Players))
	for i, p := range roster.Players {
		players[i] = bracket.Player{
			// Ids derive from names so repeated runs print identical output
			ID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(p.Name))),
			Name:   p.Name,
			Points: p.Points,
			Rating: p.Rating,
		}
	}
	bracket.ApplySeeding(players)

	policy := bracket.DefaultBestOfPolicy()
	if *bestOf > 0 {
		policy = bracket.UniformBestOf(*bestOf)
	}
	format := bracket.Format{
		Kind:            bracket.FormatKind(*kind),
		Groups:          *groups,
		AdvancePerGroup: *advance,
		Legs:            *legs,
		Playoff:         bracket.FormatKind(*playoff),
	}

	b, err := bracket.Build(players, format, policy)
	if err != nil {
		return err
	}
	index := bracket.NewRoster(players)

	if *resultsPath != "" {
		var results resultsFile
		if err := readYAML(*resultsPath, &results); err != nil {
			return err
		}
		if err := replay(b, index, results); err != nil {
			return err
		}
	}

	encoded, digest, err := codec.MarshalDigest(b)
	if err != nil {
		return err
	}

	out := output{Players: players, Bracket: b, Digest: digest, SnapshotBytes: len(encoded)}
	if id := b.Champion(); id != nil {
		out.Champion = index[*id].Name
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func replay(b *bracket.Bracket, roster bracket.Roster, results resultsFile) error {
	for _, name := range results.Forfeits {
		p := findPlayer(roster, name)
		if p == nil {
			return fmt.Errorf("forfeit: unknown player %q", name)
		}
		p.Forfeit = true
	}
	if _, err := b.ApplyForfeitWalkovers(roster); err != nil {
		return err
	}

	for _, r := range results.Results {
		finalize := r.Finalize == nil || *r.Finalize
		if _, err := b.UpdateMatchScore(roster, r.Match, r.A, r.B, finalize); err != nil {
			return fmt.Errorf("result for %s: %w", r.Match, err)
		}
	}

	if results.Playoffs {
		if _, err := b.BuildPlayoffs(roster, false); err != nil {
			return err
		}
	}
	return nil
}

func findPlayer(roster bracket.Roster, name string) *bracket.Player {
	for _, p := range roster {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
