package pdsp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planeEvent(nhits [NPlanes]int) EventRecord {
	event := EventRecord{NHits: nhits, HasTruth: true, Truth: Truth{PDG: PDGPiPlus, Interacted: true}, Topology: TopoNoPion}
	for p := 0; p < NPlanes; p++ {
		for i := 0; i < nhits[p]; i++ {
			event.Planes[p].Wire = append(event.Planes[p].Wire, 100*p+i)
			event.Planes[p].Time = append(event.Planes[p].Time, 10+i)
			event.Planes[p].Integral = append(event.Planes[p].Integral, float32(i)+0.5)
		}
	}
	return event
}

func TestGetPlane(t *testing.T) {
	dataset := NewDataset([]EventRecord{
		planeEvent([NPlanes]int{3, 0, 2}),
		planeEvent([NPlanes]int{1, 4, 5}),
	}, DefaultGeometry())

	for e := 0; e < dataset.NEvents(); e++ {
		for p := 0; p < NPlanes; p++ {
			coords, features, err := dataset.GetPlane(e, p)
			require.NoError(t, err)
			nhits := dataset.Events[e].NHits[p]
			assert.Len(t, coords, nhits)
			assert.Len(t, features, nhits)
		}
	}

	coords, features, err := dataset.GetPlane(1, 2)
	require.NoError(t, err)
	assert.Equal(t, [2]int{200, 10}, coords[0])
	assert.Equal(t, [2]int{204, 14}, coords[4])
	assert.Equal(t, [1]float32{4.5}, features[4])
}

func TestGetPlaneErrors(t *testing.T) {
	dataset := NewDataset([]EventRecord{planeEvent([NPlanes]int{1, 1, 1})}, DefaultGeometry())

	for _, plane := range []int{-1, 3, 42} {
		_, _, err := dataset.GetPlane(0, plane)
		var planeErr *ErrInvalidPlane
		require.True(t, errors.As(err, &planeErr))
		assert.Equal(t, plane, planeErr.PlaneID)
	}

	_, _, err := dataset.GetPlane(1, 0)
	var indexErr *ErrEventIndex
	require.True(t, errors.As(err, &indexErr))
	assert.Equal(t, 1, indexErr.NEvents)
}

func TestGetAllPlanes(t *testing.T) {
	dataset := NewDataset([]EventRecord{planeEvent([NPlanes]int{1, 2, 3})}, DefaultGeometry())
	clouds, topo, err := dataset.GetAllPlanes(0)
	require.NoError(t, err)
	assert.Equal(t, TopoNoPion, topo)
	for p := 0; p < NPlanes; p++ {
		assert.Len(t, clouds[p].Coordinates, p+1)
		assert.Len(t, clouds[p].Features, p+1)
	}
}

func TestMakePlane(t *testing.T) {
	event := EventRecord{NHits: [NPlanes]int{0, 0, 3}, Topology: TopoNoPion}
	event.Planes[2] = PlaneHitSet{
		Wire:     []int{4, 4, 479},
		Time:     []int{7, 7, 912},
		Integral: []float32{1, 2, 3},
	}
	dataset := NewDataset([]EventRecord{event}, DefaultGeometry())

	grid, err := dataset.MakePlane(0, 2, false)
	require.NoError(t, err)
	rows, cols := grid.Dims()
	assert.Equal(t, 480, rows)
	assert.Equal(t, 913, cols)
	// Hits sharing a cell overwrite each other.
	assert.Equal(t, 2., grid.At(4, 7))
	assert.Equal(t, 3., grid.At(479, 912))
	assert.Equal(t, 0., grid.At(0, 0))

	padded, err := dataset.MakePlane(0, 2, true)
	require.NoError(t, err)
	rows, _ = padded.Dims()
	assert.Equal(t, 800, rows)

	induction, err := dataset.MakePlane(0, 0, false)
	require.NoError(t, err)
	rows, _ = induction.Dims()
	assert.Equal(t, 800, rows)

	_, err = dataset.MakePlane(0, 5, false)
	assert.IsType(t, &ErrInvalidPlane{}, err)
}

func TestMakePlaneOutOfBounds(t *testing.T) {
	event := EventRecord{NHits: [NPlanes]int{0, 0, 1}}
	event.Planes[2] = PlaneHitSet{Wire: []int{3}, Time: []int{-88}, Integral: []float32{1}}
	dataset := NewDataset([]EventRecord{event}, DefaultGeometry())

	_, err := dataset.MakePlane(0, 2, false)
	var boundsErr *ErrOutOfBounds
	require.True(t, errors.As(err, &boundsErr))
	assert.Equal(t, -88, boundsErr.Time)
}

func TestMakePlaneInvalidGeometry(t *testing.T) {
	event := planeEvent([NPlanes]int{1, 1, 1})

	bare := &Dataset{Events: []EventRecord{event}}
	_, err := bare.MakePlane(0, 2, false)
	assert.IsType(t, &ErrInvalidGeometry{}, err)

	partial := NewDataset([]EventRecord{event}, Geometry{MaxTime: 913, MaxWires: [NPlanes]int{800, 800}})
	_, err = partial.MakePlane(0, 2, false)
	assert.IsType(t, &ErrInvalidGeometry{}, err)
	// The whole geometry is validated, not only the requested plane.
	_, err = partial.MakePlane(0, 0, false)
	assert.IsType(t, &ErrInvalidGeometry{}, err)
}

func TestGetPlaneMisaligned(t *testing.T) {
	event := planeEvent([NPlanes]int{1, 1, 2})
	event.Planes[2].Time = event.Planes[2].Time[:1]
	dataset := NewDataset([]EventRecord{event}, DefaultGeometry())

	_, _, err := dataset.GetPlane(0, 2)
	var misaligned *ErrMisaligned
	require.True(t, errors.As(err, &misaligned), "got %v", err)
	assert.Equal(t, 2, misaligned.Want)
	assert.Equal(t, 1, misaligned.Got)

	_, _, err = dataset.GetPlane(0, 0)
	assert.NoError(t, err)
}
