package pdsp

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyBounds(t *testing.T) {
	geometry := DefaultGeometry()
	hits := PlaneHitSet{
		Wire:     []int{0, 479, 480, 10, 20},
		Time:     []int{0, 912, 5, 913, -88},
		Integral: []float32{1, 2, 3, 4, 5},
	}

	t.Run("ignore keeps everything", func(t *testing.T) {
		got, err := ApplyBounds(hits, 2, geometry, BoundsIgnore)
		require.NoError(t, err)
		assert.Equal(t, hits, got)
	})

	t.Run("drop removes hits outside the plane", func(t *testing.T) {
		got, err := ApplyBounds(hits, 2, geometry, BoundsDrop)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 479}, got.Wire)
		assert.Equal(t, []int{0, 912}, got.Time)
		assert.Equal(t, []float32{1, 2}, got.Integral)
	})

	t.Run("induction planes are wider", func(t *testing.T) {
		got, err := ApplyBounds(hits, 0, geometry, BoundsDrop)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 479, 480}, got.Wire)
	})

	t.Run("reject reports the first bad hit", func(t *testing.T) {
		_, err := ApplyBounds(hits, 2, geometry, BoundsReject)
		var boundsErr *ErrOutOfBounds
		require.True(t, errors.As(err, &boundsErr))
		assert.Equal(t, ErrOutOfBounds{Plane: 2, Wire: 480, Time: 5}, *boundsErr)
	})
}

func TestGeometry(t *testing.T) {
	geometry := DefaultGeometry()
	assert.Equal(t, 800, geometry.PaddedWires())
	assert.True(t, geometry.Contains(0, 799, 912))
	assert.False(t, geometry.Contains(2, 799, 912))
	assert.False(t, geometry.Contains(1, 0, 913))
}

func TestBoundsPolicyJSON(t *testing.T) {
	var config struct {
		Policy BoundsPolicy `json:"bounds_policy"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"bounds_policy": "drop"}`), &config))
	assert.Equal(t, BoundsDrop, config.Policy)

	data, err := json.Marshal(BoundsReject)
	require.NoError(t, err)
	assert.Equal(t, `"reject"`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"bounds_policy": "clamp"}`), &config))
}

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name     string
		geometry Geometry
		valid    bool
	}{
		{"default", DefaultGeometry(), true},
		{"zero value", Geometry{}, false},
		{"missing plane 2 width", Geometry{MaxTime: 913, MaxWires: [NPlanes]int{800, 800}}, false},
		{"no time bins", Geometry{MaxWires: [NPlanes]int{800, 800, 480}}, false},
		{"negative width", Geometry{MaxTime: 913, MaxWires: [NPlanes]int{800, -1, 480}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.geometry.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var geometryErr *ErrInvalidGeometry
			require.True(t, errors.As(err, &geometryErr), "got %v", err)
			assert.Equal(t, tt.geometry, geometryErr.Geometry)
		})
	}
}
