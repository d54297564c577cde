package bracket

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8.
// Brackets never shrink below 4 slots.
func BracketSize(count int) int {
	size := 4
	for size < count {
		size <<= 1
	}
	return size
}

// GenerateSeedPositions returns the 1-based seed placed at each first round slot.
// Consecutive pairs are first round opponents, so for 8 it returns 1,8,4,5,2,7,3,6.
func GenerateSeedPositions(size int) []int {
	if size < 1 || size&(size-1) != 0 {
		panic(fmt.Sprintf("bracket: seed positions need a power of two, got %d", size))
	}

	positions := []int{1}
	for len(positions) < size {
		next := len(positions) * 2
		expanded := make([]int, 0, next)
		for _, seed := range positions {
			expanded = append(expanded, seed, next+1-seed)
		}
		positions = expanded
	}
	return positions
}

// ApplySeeding orders players by points, then rating, then name and assigns seeds 1..n
func ApplySeeding(players []Player) {
	slices.SortStableFunc(players, func(a, b Player) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	for i := range players {
		players[i].Seed = i + 1
	}
}

// Reseed recomputes seeds. Once results exist it requires force and marks the bracket stale.
func Reseed(players []Player, b *Bracket, force bool) error {
	played := b != nil && b.HasRecordedResults()
	if played && !force {
		return ErrReseedAfterPlay
	}
	ApplySeeding(players)
	if played {
		b.Stale = true
	}
	return nil
}
