package study

import (
	"context"
	"sync"
	"time"

	"github.com/san-kum/barfea/internal/experiment"
)

// Comparison is one integrator's run of a shared orbit. Err is set instead
// of the other fields when the run failed.
type Comparison struct {
	Integrator   string
	Steps        int
	EnergyDrift  float64
	SemiMajor    float64
	Eccentricity float64
	Elapsed      time.Duration
	Err          error
}

// CompareIntegrators propagates the same orbit once per integrator, in
// parallel. A failing integrator does not stop the others.
func CompareIntegrators(ctx context.Context, cfg experiment.OrbitConfig, integrators []string) []Comparison {
	results := make([]Comparison, len(integrators))

	var wg sync.WaitGroup
	for i, name := range integrators {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()

			c := cfg
			c.Integrator = name
			start := time.Now()
			out, err := experiment.Orbit(ctx, c)

			results[idx] = Comparison{Integrator: name, Elapsed: time.Since(start), Err: err}
			if err != nil {
				return
			}
			results[idx].Steps = out.Result.StepsTaken
			results[idx].EnergyDrift = out.Result.EnergyDrift
			results[idx].SemiMajor = out.SemiMajor
			results[idx].Eccentricity = out.Eccentricity
		}(i, name)
	}
	wg.Wait()

	return results
}
