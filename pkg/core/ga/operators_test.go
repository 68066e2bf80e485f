package ga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestOperators_PreserveValidity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		inst := randomInstance(t, rng)
		length := inst.NumTasks()

		a := make([]int, length)
		b := make([]int, length)
		child := make([]int, length)

		Generate(inst, rng, a)
		Generate(inst, rng, b)
		assertValidGenes(t, inst, a)
		assertValidGenes(t, inst, b)

		Crossover(rng, a, b, child)
		assertValidGenes(t, inst, child)

		Mutate(inst, rng, child, rng.Float64())
		assertValidGenes(t, inst, child)
	}
}

func TestCrossover_GenesComeFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	a := []int{0, 0, 0, 0, 0, 0, 0, 0}
	b := []int{1, 1, 1, 1, 1, 1, 1, 1}
	child := make([]int, len(a))

	fromA := 0
	for i := 0; i < 500; i++ {
		Crossover(rng, a, b, child)
		for pos, gene := range child {
			require.Contains(t, []int{a[pos], b[pos]}, gene)
			if gene == 0 {
				fromA++
			}
		}
	}

	// Roughly half of 4000 genes come from the first parent
	assert.InDelta(t, 2000, fromA, 200)
}

func TestCrossover_IdenticalParents(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	a := []int{3, 1, 4, 1, 5}
	child := make([]int, len(a))
	Crossover(rng, a, a, child)

	assert.Equal(t, a, child)
}

func TestMutate_RateBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	inst := randomInstance(t, rng)

	genes := make([]int, inst.NumTasks())
	Generate(inst, rng, genes)
	original := append([]int(nil), genes...)

	Mutate(inst, rng, genes, 0)
	assert.Equal(t, original, genes, "a zero rate never changes a gene")

	// With rate 1 every gene is redrawn; the result is still valid
	Mutate(inst, rng, genes, 1)
	assertValidGenes(t, inst, genes)
}

func TestMutate_SingleAvailableNurse(t *testing.T) {
	in := scenarioInput()
	in.Availability["S1"] = []string{"B"}

	inst := buildFromInput(t, in)
	b, _ := inst.NurseIndex("B")

	genes := []int{b, b}
	Mutate(inst, rand.New(rand.NewSource(1)), genes, 1)
	assert.Equal(t, []int{b, b}, genes)
}

func TestSelectParents(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	counts := make([]int, 5)
	for i := 0; i < 5000; i++ {
		first, second := selectParents(rng, 5)
		require.NotEqual(t, first, second)
		require.GreaterOrEqual(t, first, 0)
		require.Less(t, first, 5)
		require.GreaterOrEqual(t, second, 0)
		require.Less(t, second, 5)
		counts[first]++
		counts[second]++
	}

	// Every pool member is drawn about 2000 times
	for idx, count := range counts {
		assert.InDelta(t, 2000, count, 250, "pool index %d", idx)
	}
}

func TestSelectParents_PoolOfTwo(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 100; i++ {
		first, second := selectParents(rng, 2)
		assert.ElementsMatch(t, []int{0, 1}, []int{first, second})
	}
}
