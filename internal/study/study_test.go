package study

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/barfea/internal/config"
	"github.com/san-kum/barfea/internal/experiment"
)

func TestConvergence(t *testing.T) {
	p := config.GetPreset("fixed-free")

	points, err := Convergence(context.Background(), p, []int{10, 20, 40, 80})
	if err != nil {
		t.Fatalf("convergence failed: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}

	for i, pt := range points {
		// linear elements are exact at the nodes for an end load
		if math.Abs(pt.MaxAbs-5e-5)/5e-5 > 1e-9 {
			t.Errorf("%d elements: expected tip 5e-5, got %g", pt.Elements, pt.MaxAbs)
		}
		if pt.MaxNode != pt.Elements {
			t.Errorf("%d elements: peak should be at the tip, got node %d", pt.Elements, pt.MaxNode)
		}
		if i == 0 {
			if pt.Change != 0 {
				t.Errorf("first point should have no change, got %g", pt.Change)
			}
			continue
		}
		// consistent mass converges from above
		if pt.Omega1 >= points[i-1].Omega1 {
			t.Errorf("%d elements: omega_1 %g should drop below %g", pt.Elements, pt.Omega1, points[i-1].Omega1)
		}
		if i > 1 && pt.Change >= points[i-1].Change {
			t.Errorf("%d elements: change %g should shrink below %g", pt.Elements, pt.Change, points[i-1].Change)
		}
	}

	w1 := math.Pi / 2 * math.Sqrt(200e9/7850)
	if last := points[3].Omega1; math.Abs(last-w1)/w1 > 1e-4 {
		t.Errorf("expected omega_1 near %.2f on the finest mesh, got %.2f", w1, last)
	}
}

func TestConvergenceErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := Convergence(ctx, config.GetPreset("springs"), []int{3, 6}); !errors.Is(err, ErrNotRefinable) {
		t.Errorf("expected ErrNotRefinable for an explicit mesh, got %v", err)
	}
	if _, err := Convergence(ctx, config.GetPreset("fixed-free"), []int{10, 15}); !errors.Is(err, ErrNotRefinable) {
		t.Errorf("expected ErrNotRefinable for 15 elements, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Convergence(cancelled, config.GetPreset("fixed-free"), []int{10, 20}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRefine(t *testing.T) {
	p := config.GetPreset("settlement")
	fine, err := Refine(p, 18)
	if err != nil {
		t.Fatal(err)
	}
	if fine.Elements != 18 {
		t.Errorf("expected 18 elements, got %d", fine.Elements)
	}
	if fine.Loads[9] != -1.5e5 || len(fine.Loads) != 1 {
		t.Errorf("load should move from node 3 to node 9, got %v", fine.Loads)
	}
	if c := fine.Constraints[1]; c.Node != 18 || c.Value != -0.0005 {
		t.Errorf("settlement should move to node 18, got %+v", c)
	}
	if p.Elements != 6 || p.Constraints[1].Node != 6 {
		t.Error("refine modified its input")
	}
}

func TestCompareIntegrators(t *testing.T) {
	cfg := experiment.DefaultOrbitConfig()
	cfg.Dt = 20

	results := CompareIntegrators(context.Background(), cfg, []string{"euler", "rk4", "verlet", "bogus"})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, name := range []string{"euler", "rk4", "verlet", "bogus"} {
		if results[i].Integrator != name {
			t.Errorf("result %d: expected %s, got %s", i, name, results[i].Integrator)
		}
	}

	euler, rk4, verlet, bogus := results[0], results[1], results[2], results[3]
	if bogus.Err == nil {
		t.Error("expected an error for an unknown integrator")
	}
	for _, r := range results[:3] {
		if r.Err != nil {
			t.Fatalf("%s failed: %v", r.Integrator, r.Err)
		}
		if r.Steps == 0 {
			t.Errorf("%s took no steps", r.Integrator)
		}
	}
	if math.Abs(rk4.EnergyDrift) >= math.Abs(euler.EnergyDrift) {
		t.Errorf("rk4 drift %g should beat euler %g", rk4.EnergyDrift, euler.EnergyDrift)
	}
	if math.Abs(verlet.EnergyDrift) >= math.Abs(euler.EnergyDrift) {
		t.Errorf("verlet drift %g should beat euler %g", verlet.EnergyDrift, euler.EnergyDrift)
	}
	if math.Abs(rk4.SemiMajor-cfg.Radius) > 1e-3 {
		t.Errorf("rk4 should hold a = %g, got %g", cfg.Radius, rk4.SemiMajor)
	}
}
