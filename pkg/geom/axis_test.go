package geom

import (
	"math"
	"testing"
)

func TestAxisIdentityWithinTolerance(t *testing.T) {
	reg := NewAxisRegistry()

	a := reg.Acquire(V(1, 0))
	if a == nil {
		t.Fatal("Acquire returned nil for a unit vector")
	}

	// Same direction, tiny angular perturbation, opposite orientation:
	// all three must intern to the same axis.
	b := reg.Acquire(V(100, 100*1e-6))
	if b != a {
		t.Error("nearly-horizontal vector did not match existing axis")
	}
	c := reg.Acquire(V(-3, 0))
	if c != a {
		t.Error("reversed vector did not match existing axis")
	}

	if reg.Len() != 1 {
		t.Errorf("expected 1 live axis, got %d", reg.Len())
	}
	if reg.Refs(a) != 3 {
		t.Errorf("expected refcount 3, got %d", reg.Refs(a))
	}
}

func TestAxisVerticalSeam(t *testing.T) {
	reg := NewAxisRegistry()

	// Directions straddling the +/-90 degree canonical seam are still the
	// same axis.
	a := reg.Acquire(V(1e-7, 1))
	b := reg.Acquire(V(-1e-7, 1))
	if a != b {
		t.Error("near-vertical directions on opposite sides of the seam interned as distinct axes")
	}
}

func TestAxisDistinctDirections(t *testing.T) {
	reg := NewAxisRegistry()

	h := reg.Acquire(V(1, 0))
	v := reg.Acquire(V(0, 1))
	d := reg.Acquire(V(1, 1))
	if h == v || h == d || v == d {
		t.Error("distinct directions shared an axis")
	}
	if reg.Len() != 3 {
		t.Errorf("expected 3 live axes, got %d", reg.Len())
	}
}

func TestAxisReleaseEvicts(t *testing.T) {
	reg := NewAxisRegistry()

	a := reg.Acquire(V(2, 1))
	reg.Retain(a)
	reg.Release(a)
	if reg.Refs(a) != 1 {
		t.Errorf("expected refcount 1 after retain+release, got %d", reg.Refs(a))
	}
	reg.Release(a)
	if reg.Refs(a) != 0 {
		t.Errorf("expected eviction at zero refs, got %d", reg.Refs(a))
	}
	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", reg.Len())
	}

	// A fresh acquire after eviction creates a new identity.
	b := reg.Acquire(V(2, 1))
	if b == a {
		t.Error("evicted axis identity was reused")
	}
}

func TestAxisZeroVector(t *testing.T) {
	reg := NewAxisRegistry()
	if a := reg.Acquire(V(0, 0)); a != nil {
		t.Error("zero vector produced an axis")
	}
}

func TestCanonicalDirHalfPlane(t *testing.T) {
	cases := []struct {
		in   Vec
		want Vec
	}{
		{V(2, 0), V(1, 0)},
		{V(-2, 0), V(1, 0)},
		{V(0, 3), V(0, -1)},
		{V(0, -3), V(0, -1)},
		{V(-1, -1), V(1/math.Sqrt2, 1/math.Sqrt2)},
	}
	for _, c := range cases {
		got, ok := CanonicalDir(c.in)
		if !ok {
			t.Fatalf("CanonicalDir(%v) reported degenerate", c.in)
		}
		if !AlmostEqual(got, c.want, 1e-12) {
			t.Errorf("CanonicalDir(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
