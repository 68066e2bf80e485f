package ga

import (
	"golang.org/x/exp/rand"

	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

// Generate fills dst with a random valid individual: each gene is drawn uniformly
// from the nurses available in its task's shift
func Generate(inst *instance.Instance, rng *rand.Rand, dst []int) {
	for task := range dst {
		eligible := inst.Eligible(task)
		dst[task] = eligible[rng.Intn(len(eligible))]
	}
}

// Crossover writes the uniform crossover of a and b into dst. Each position takes
// a's gene with probability CrossoverBias, otherwise b's. Children of valid parents
// are valid without repair since genes are copied position by position.
func Crossover(rng *rand.Rand, a, b, dst []int) {
	for i := range dst {
		if rng.Float64() < CrossoverBias {
			dst[i] = a[i]
		} else {
			dst[i] = b[i]
		}
	}
}

// Mutate resamples each gene of genes in place with probability rate. The new gene
// is a fresh uniform draw from the task's availability list and may equal the old one.
func Mutate(inst *instance.Instance, rng *rand.Rand, genes []int, rate float64) {
	for task := range genes {
		if rng.Float64() < rate {
			eligible := inst.Eligible(task)
			genes[task] = eligible[rng.Intn(len(eligible))]
		}
	}
}

// selectParents draws two distinct indices uniformly from [0, poolSize)
func selectParents(rng *rand.Rand, poolSize int) (int, int) {
	first := rng.Intn(poolSize)
	second := rng.Intn(poolSize - 1)
	if second >= first {
		second++
	}
	return first, second
}
