package service

import (
	"fmt"
	"strconv"
	"strings"
)

type PlayerInput struct {
	Name   string `json:"name" yaml:"name"`
	Points int    `json:"points" yaml:"points"`
	Rating int    `json:"rating" yaml:"rating"`
	// Identity of the user allowed to act for this player
	UID string `json:"uid" yaml:"uid"`
}

// ParseRoster reads one player per line as "name[, points[, rating[, uid]]]".
// Blank lines and lines starting with # are skipped.
func ParseRoster(text string) ([]PlayerInput, error) {
	var players []PlayerInput
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) > 4 {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrInvalidInput, n+1, len(fields))
		}

		p := PlayerInput{Name: fields[0]}
		numbers := []*int{&p.Points, &p.Rating}
		for i, dst := range numbers {
			if len(fields) <= i+1 || fields[i+1] == "" {
				continue
			}
			v, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q is not a number", ErrInvalidInput, n+1, fields[i+1])
			}
			*dst = v
		}
		if len(fields) == 4 {
			p.UID = fields[3]
		}
		players = append(players, p)
	}
	return players, nil
}

// validateRoster rejects unnamed and duplicate players
func validateRoster(players []PlayerInput) error {
	seen := make(map[string]bool, len(players))
	for i, p := range players {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			return fmt.Errorf("%w: player %d has no name", ErrInvalidInput, i+1)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidInput, p.Name)
		}
		seen[name] = true
	}
	return nil
}
