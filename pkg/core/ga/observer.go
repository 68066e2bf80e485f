package ga

// Observer receives progress notifications from the engine.
// Implementations must be safe for concurrent use when runs execute in parallel.
type Observer interface {
	// GenerationCompleted is called after a generation is ranked, with its best cost
	GenerationCompleted(run, generation int, best float64)

	// RunCompleted is called once a run has produced its record
	RunCompleted(record *RunRecord)

	// EvaluationsCompleted reports how many individuals were evaluated in one batch
	EvaluationsCompleted(count int)
}

// Observers fans notifications out to several observers
type Observers []Observer

func (o Observers) GenerationCompleted(run, generation int, best float64) {
	for _, obs := range o {
		obs.GenerationCompleted(run, generation, best)
	}
}

func (o Observers) RunCompleted(record *RunRecord) {
	for _, obs := range o {
		obs.RunCompleted(record)
	}
}

func (o Observers) EvaluationsCompleted(count int) {
	for _, obs := range o {
		obs.EvaluationsCompleted(count)
	}
}

type nopObserver struct{}

func (nopObserver) GenerationCompleted(int, int, float64) {}
func (nopObserver) RunCompleted(*RunRecord)               {}
func (nopObserver) EvaluationsCompleted(int)              {}
