package registry

import (
	"errors"
	"sort"
	"testing"
)

type fakeStrategy struct {
	name string
}

func TestRegistry_ResolveTypeSpecific(t *testing.T) {
	r := New[*fakeStrategy]()
	mask := &fakeStrategy{name: "mask"}
	gen := &fakeStrategy{name: "generative"}

	r.RegisterDefault(gen)
	r.RegisterTypes([]string{"text", "table_cell"}, mask)

	got, err := r.Resolve("table_cell")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != mask {
		t.Errorf("Resolve(table_cell): got %s, want mask", got.name)
	}
}

func TestRegistry_ResolveFallsBackToDefault(t *testing.T) {
	r := New[*fakeStrategy]()
	gen := &fakeStrategy{name: "generative"}
	r.RegisterDefault(gen)

	got, err := r.Resolve("some_new_type")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != gen {
		t.Errorf("Resolve: got %s, want default", got.name)
	}
}

func TestRegistry_ResolveUnconfigured(t *testing.T) {
	r := New[*fakeStrategy]()

	_, err := r.Resolve("text")
	if !errors.Is(err, ErrNoStrategy) {
		t.Errorf("got %v, want ErrNoStrategy", err)
	}
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := New[*fakeStrategy]()
	first := &fakeStrategy{name: "first"}
	second := &fakeStrategy{name: "second"}

	r.RegisterTypes([]string{"figure"}, first)
	r.RegisterTypes([]string{"figure"}, second)

	got, err := r.Resolve("figure")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != second {
		t.Errorf("Resolve: got %s, want second", got.name)
	}
}

func TestRegistry_Types(t *testing.T) {
	r := New[*fakeStrategy]()
	r.RegisterTypes([]string{"image", "chart"}, &fakeStrategy{})

	tags := r.Types()
	sort.Strings(tags)
	if len(tags) != 2 || tags[0] != "chart" || tags[1] != "image" {
		t.Errorf("Types: got %v", tags)
	}
}

func TestRegistry_Configured(t *testing.T) {
	r := New[*fakeStrategy]()
	if r.Configured() {
		t.Error("empty registry reported configured")
	}
	r.RegisterTypes([]string{"text"}, &fakeStrategy{})
	if !r.Configured() {
		t.Error("registry with type entry reported unconfigured")
	}
}
