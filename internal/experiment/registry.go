package experiment

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/barfea/internal/dynamo"
	"github.com/san-kum/barfea/internal/integrators"
)

var ErrUnknownIntegrator = errors.New("unknown integrator")

// Registry maps integrator names to constructors.
type Registry struct {
	makers map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	tableau := func(tab integrators.Tableau) func() dynamo.Integrator {
		return func() dynamo.Integrator { return integrators.NewExplicitRK(tab) }
	}
	return &Registry{makers: map[string]func() dynamo.Integrator{
		"euler":    tableau(integrators.EulerTableau),
		"midpoint": tableau(integrators.MidpointTableau),
		"heun":     tableau(integrators.HeunTableau),
		"rk4":      tableau(integrators.RK4Tableau),
		"rk45":     func() dynamo.Integrator { return integrators.NewRK45() },
		"verlet":   func() dynamo.Integrator { return integrators.NewVerlet() },
		"leapfrog": func() dynamo.Integrator { return integrators.NewLeapfrog() },
	}}
}

// GetIntegrator returns a new instance each call, since integrators keep
// scratch buffers.
func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	mk, ok := r.makers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownIntegrator, name, r.ListIntegrators())
	}
	return mk(), nil
}

func (r *Registry) ListIntegrators() []string {
	return slices.Sorted(maps.Keys(r.makers))
}
