package physics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/barfea/internal/dynamo"
	"github.com/san-kum/barfea/internal/integrators"
)

func TestTwoBodyDerive(t *testing.T) {
	b := NewTwoBody(1)
	dx := b.Derive(dynamo.State{2, 0, 0, 0.5}, nil, 0)

	want := dynamo.State{0, 0.5, -0.25, 0}
	for i := range want {
		if math.Abs(dx[i]-want[i]) > 1e-15 {
			t.Errorf("component %d: expected %g, got %g", i, want[i], dx[i])
		}
	}
}

func TestTwoBodyCircularState(t *testing.T) {
	b := NewTwoBody(EarthMu)
	x, err := b.CircularState(7000)
	if err != nil {
		t.Fatal(err)
	}
	// circular orbit: energy = -mu/(2r)
	if e := b.Energy(x); math.Abs(e+EarthMu/14000) > 1e-9 {
		t.Errorf("expected energy %.6f, got %.6f", -EarthMu/14000, e)
	}
	a, ecc := b.Elements(x)
	if math.Abs(a-7000) > 1e-6 || ecc > 1e-12 {
		t.Errorf("expected a=7000 e=0, got a=%g e=%g", a, ecc)
	}

	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := b.CircularState(r); !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("radius %g: expected ErrParameterBounds, got %v", r, err)
		}
	}
}

func TestTwoBodyElements(t *testing.T) {
	b := NewTwoBody(1)

	// periapsis at r=1 with v=sqrt(1.5): e = r v^2/mu - 1 = 0.5, a = r/(1-e) = 2
	a, e := b.Elements(dynamo.State{1, 0, 0, math.Sqrt(1.5)})
	if math.Abs(a-2) > 1e-12 || math.Abs(e-0.5) > 1e-12 {
		t.Errorf("expected a=2 e=0.5, got a=%g e=%g", a, e)
	}

	a, _ = b.Elements(dynamo.State{1, 0, 0, 2})
	if !math.IsInf(a, 1) {
		t.Errorf("escape trajectory should have infinite a, got %g", a)
	}
}

func TestTwoBodyPeriod(t *testing.T) {
	b := NewTwoBody(EarthMu)
	// a geostationary orbit takes one sidereal day
	if p := b.Period(42164.17); math.Abs(p-86164.1) > 1 {
		t.Errorf("expected about 86164 s, got %.1f", p)
	}
}

func TestTwoBodyOrbitCloses(t *testing.T) {
	b := NewTwoBody(EarthMu)
	x0, _ := b.CircularState(7000)
	period := b.Period(7000)

	sim := dynamo.New(b, integrators.NewRK4(), nil)
	result, err := sim.Run(context.Background(), x0, dynamo.Config{Dt: 5, Duration: period})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	final := result.Final()
	if d := math.Hypot(final[0]-x0[0], final[1]-x0[1]); d > 1e-3 {
		t.Errorf("orbit did not close: %.6f km off", d)
	}
	if result.EnergyDrift > 1e-9 {
		t.Errorf("RK4 energy drift too high: %e", result.EnergyDrift)
	}
}

func TestTwoBodyVerletBounded(t *testing.T) {
	b := NewTwoBody(EarthMu)
	x0, _ := b.CircularState(7000)
	period := b.Period(7000)

	sim := dynamo.New(b, integrators.NewVerlet(), nil)
	result, err := sim.Run(context.Background(), x0, dynamo.Config{Dt: 5, Duration: 20 * period})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	e0 := b.Energy(x0)
	for i, x := range result.States {
		if drift := math.Abs(b.Energy(x)-e0) / math.Abs(e0); drift > 1e-4 {
			t.Fatalf("sample %d: energy drift %e", i, drift)
		}
	}
}
