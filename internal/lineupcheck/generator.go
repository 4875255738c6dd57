package lineupcheck

import (
	"math/rand/v2"

	"github.com/okian/lineup/internal/domain/model"
)

// unknownName is mixed into some requests; the service must ignore it.
const unknownName = "Unknown Player"

// generateCases builds n request subsets from the snapshot. Subsets vary in
// size and order, and some repeat a name or include an unknown one.
func generateCases(players []model.Player, n int, seed uint64) []*Case {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}

	cases := make([]*Case, n)
	for i := range cases {
		size := rng.IntN(len(names) + 1)
		perm := rng.Perm(len(names))
		picked := make([]string, 0, size+2)
		for _, idx := range perm[:size] {
			picked = append(picked, names[idx])
		}
		if size > 0 && rng.IntN(4) == 0 {
			picked = append(picked, picked[rng.IntN(size)])
		}
		if rng.IntN(5) == 0 {
			picked = append(picked, unknownName)
		}
		cases[i] = &Case{ID: i, Names: picked}
	}
	return cases
}
