package shape

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCardinalityLattice(t *testing.T) {
	tests := []struct {
		a, b    Cardinality
		widen   Cardinality
		tighten Cardinality
		fits    bool
	}{
		{X1To1, X1To1, X1To1, X1To1, true},
		{X1To1, X0To1, X0To1, X1To1, true},
		{X0To1, X1To1, X0To1, X1To1, false},
		{X1To1, X1ToN, X1ToN, X1To1, true},
		{X0To1, X1ToN, X0ToN, X1To1, false},
		{X1ToN, X0ToN, X0ToN, X1ToN, true},
		{X0ToN, X1To1, X0ToN, X1To1, false},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			if got := tt.a.Widen(tt.b); got != tt.widen {
				t.Errorf("%s | %s = %s, want %s", tt.a, tt.b, got, tt.widen)
			}
			if got := tt.a.Tighten(tt.b); got != tt.tighten {
				t.Errorf("%s & %s = %s, want %s", tt.a, tt.b, got, tt.tighten)
			}
			if got := tt.a.Fits(tt.b); got != tt.fits {
				t.Errorf("fits(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.fits)
			}
		})
	}
}

func TestCardinalityAdmits(t *testing.T) {
	tests := []struct {
		card   Cardinality
		length int
		want   bool
	}{
		{X1To1, 1, true},
		{X1To1, 0, false},
		{X1To1, 2, false},
		{X0To1, 0, true},
		{X0To1, 2, false},
		{X1ToN, 0, false},
		{X1ToN, 5, true},
		{X0ToN, 0, true},
		{X0ToN, 5, true},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			if got := tt.card.Admits(tt.length); got != tt.want {
				t.Errorf("%s admits %d = %v, want %v", tt.card, tt.length, got, tt.want)
			}
		})
	}
}

func genCardinality() gopter.Gen {
	return gen.OneConstOf(X1To1, X0To1, X1ToN, X0ToN)
}

func TestCardinalityLatticeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("widen is an upper bound", prop.ForAll(
		func(a, b Cardinality) bool {
			return a.Fits(a.Widen(b)) && b.Fits(a.Widen(b))
		},
		genCardinality(), genCardinality(),
	))

	properties.Property("tighten is a lower bound", prop.ForAll(
		func(a, b Cardinality) bool {
			return a.Tighten(b).Fits(a) && a.Tighten(b).Fits(b)
		},
		genCardinality(), genCardinality(),
	))

	properties.Property("fits is antisymmetric", prop.ForAll(
		func(a, b Cardinality) bool {
			if a.Fits(b) && b.Fits(a) {
				return a == b
			}
			return true
		},
		genCardinality(), genCardinality(),
	))

	properties.Property("fits iff widen is absorbed", prop.ForAll(
		func(a, b Cardinality) bool {
			return a.Fits(b) == (a.Widen(b) == b)
		},
		genCardinality(), genCardinality(),
	))

	properties.TestingRun(t)
}
