package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestLocalToGlobal_ConcreteScenario(t *testing.T) {
	// A 200x150 sub-image placed at (100,100)-(400,300) in its parent,
	// so the scale factors are 1.5 and 1.333...
	local := Box{X0: 10, Y0: 10, X1: 50, Y1: 50}
	parent := Box{X0: 100, Y0: 100, X1: 400, Y1: 300}
	localSize := Size{Width: 200, Height: 150}

	got, err := LocalToGlobal(local, parent, localSize)
	if err != nil {
		t.Fatalf("LocalToGlobal failed: %v", err)
	}

	want := Box{X0: 115, Y0: 100 + 10*200.0/150.0, X1: 175, Y1: 100 + 50*200.0/150.0}
	if !boxesClose(got, want, 0.1) {
		t.Errorf("got %+v, want approx (115, 113.3, 175, 166.7)", got)
	}
}

func TestGlobalToLocal_InvertsLocalToGlobal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		localSize := Size{Width: 1 + rng.Intn(2000), Height: 1 + rng.Intn(2000)}
		parent := Box{
			X0: rng.Float64() * 500,
			Y0: rng.Float64() * 500,
		}
		parent.X1 = parent.X0 + 1 + rng.Float64()*1000
		parent.Y1 = parent.Y0 + 1 + rng.Float64()*1000

		local := Box{
			X0: rng.Float64() * float64(localSize.Width),
			Y0: rng.Float64() * float64(localSize.Height),
		}
		local.X1 = local.X0 + rng.Float64()*float64(localSize.Width)
		local.Y1 = local.Y0 + rng.Float64()*float64(localSize.Height)

		global, err := LocalToGlobal(local, parent, localSize)
		if err != nil {
			t.Fatalf("LocalToGlobal failed: %v", err)
		}
		back, err := GlobalToLocal(global, parent, localSize)
		if err != nil {
			t.Fatalf("GlobalToLocal failed: %v", err)
		}

		eps := 1e-6 * math.Max(float64(localSize.Width), float64(localSize.Height))
		if !boxesClose(back, local, eps) {
			t.Fatalf("round trip diverged: start %+v, got %+v", local, back)
		}
	}
}

func TestMapper_DegenerateFrames(t *testing.T) {
	local := Box{X0: 0, Y0: 0, X1: 10, Y1: 10}

	tests := []struct {
		name      string
		parent    Box
		localSize Size
	}{
		{"zero-width parent", Box{X0: 50, Y0: 0, X1: 50, Y1: 100}, Size{Width: 10, Height: 10}},
		{"zero-height parent", Box{X0: 0, Y0: 50, X1: 100, Y1: 50}, Size{Width: 10, Height: 10}},
		{"inverted parent", Box{X0: 100, Y0: 100, X1: 0, Y1: 0}, Size{Width: 10, Height: 10}},
		{"empty local image", Box{X0: 0, Y0: 0, X1: 100, Y1: 100}, Size{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LocalToGlobal(local, tt.parent, tt.localSize); !errors.Is(err, ErrDegenerateFrame) {
				t.Errorf("LocalToGlobal: got %v, want ErrDegenerateFrame", err)
			}
			if _, err := GlobalToLocal(local, tt.parent, tt.localSize); !errors.Is(err, ErrDegenerateFrame) {
				t.Errorf("GlobalToLocal: got %v, want ErrDegenerateFrame", err)
			}
		})
	}
}
