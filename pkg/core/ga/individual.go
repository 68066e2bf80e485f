package ga

import "slices"

// Individual is one candidate roster: gene i holds the nurse index assigned to task i
type Individual struct {
	Genes []int
	Cost  float64
}

// Clone returns a deep copy of the individual
func (ind *Individual) Clone() *Individual {
	return &Individual{
		Genes: slices.Clone(ind.Genes),
		Cost:  ind.Cost,
	}
}

// newPopulation allocates size individuals whose genes share one backing array
func newPopulation(size, length int) []Individual {
	backing := make([]int, size*length)
	pop := make([]Individual, size)
	for i := range pop {
		pop[i].Genes = backing[i*length : (i+1)*length : (i+1)*length]
	}
	return pop
}

// rankPopulation orders individuals by ascending cost. The sort is stable so equal
// costs keep their previous relative order and runs stay reproducible.
func rankPopulation(ranked []*Individual) {
	slices.SortStableFunc(ranked, func(a, b *Individual) int {
		switch {
		case a.Cost < b.Cost:
			return -1
		case a.Cost > b.Cost:
			return 1
		default:
			return 0
		}
	})
}
