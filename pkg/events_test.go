package pdsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventID(t *testing.T) {
	id := NewEventID(5, 1, 7)
	assert.Equal(t, 3, id.Len())
	assert.Equal(t, []uint32{5, 1, 7}, id.Components())
	assert.Equal(t, "(5, 1, 7)", id.String())
	assert.True(t, id.Equal(NewEventID(5, 1, 7)))

	// Ids of different widths never match, even when the used components agree.
	assert.NotEqual(t, NewEventID(5), NewEventID(5, 0))
	assert.NotEqual(t, NewEventID(5, 1, 7), NewEventID(5, 1, 7, 0))

	run, ok := id.Run()
	assert.True(t, ok)
	assert.Equal(t, 5, run)
	_, ok = NewEventID(42).Run()
	assert.False(t, ok)

	// Components returns a copy.
	id.Components()[0] = 9
	assert.Equal(t, NewEventID(5, 1, 7), id)

	assert.Panics(t, func() { NewEventID(1, 2, 3, 4, 5) })
}

func TestFirstRun(t *testing.T) {
	store := NewMemStore()
	store.AddGroup("b", makeGroup(fixtureEvent{id: NewEventID(9, 0, 1), hits: hitsOnAllPlanes(1)}))
	store.AddGroup("a", MemGroup{})
	run, err := FirstRun(store)
	assert.NoError(t, err)
	assert.Equal(t, 9, run)

	scalar := NewMemStore()
	scalar.AddGroup("a", makeGroup(fixtureEvent{id: NewEventID(3), hits: hitsOnAllPlanes(1)}))
	_, err = FirstRun(scalar)
	assert.Error(t, err)

	_, err = FirstRun(NewMemStore())
	assert.Error(t, err)
}
