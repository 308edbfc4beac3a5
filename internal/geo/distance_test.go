package geo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceIdentity(t *testing.T) {
	points := []Point{
		{0, 0},
		{28.6139, 77.2090},
		{-33.8688, 151.2093},
		{89.9, -179.9},
	}
	for _, p := range points {
		assert.InDelta(t, 0, Distance(p, p), 1e-9)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		a := Point{Lat: r.Float64()*180 - 90, Lng: r.Float64()*360 - 180}
		b := Point{Lat: r.Float64()*180 - 90, Lng: r.Float64()*360 - 180}
		assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6)
		assert.GreaterOrEqual(t, Distance(a, b), 0.0)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{"tenth of a degree of longitude at the equator", Point{0, 0}, Point{0, 0.1}, 11.12, 0.01},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 111.19, 0.01},
		{"ten by ten degrees", Point{0, 0}, Point{10, 10}, 1568.5, 1},
		{"antipodal", Point{0, 0}, Point{0, 180}, 20015.09, 0.1},
		{"delhi to mumbai", Point{28.6139, 77.2090}, Point{19.0760, 72.8777}, 1148, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), tt.tol)
		})
	}
}
