package compare

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func entry(vehicle, provider string) Entry {
	return Entry{VehicleID: vehicle, ProviderID: provider}
}

func TestAddBoundsSize(t *testing.T) {
	t.Parallel()

	var s Set
	for i := 0; i < 10; i++ {
		s = Add(s, entry("v1", fmt.Sprintf("p%d", i)))
	}
	assert.Len(t, s.Entries, MaxEntries)

	// The first three adds won, in order.
	assert.Equal(t, entry("v1", "p0"), s.Entries[0])
	assert.Equal(t, entry("v1", "p2"), s.Entries[2])
}

func TestAddRejectsDuplicateProviderForVehicle(t *testing.T) {
	t.Parallel()

	s := Add(Set{}, entry("v1", "p1"))
	same := Add(s, entry("v1", "p1"))
	assert.Len(t, same.Entries, 1)

	// Same provider on a different vehicle is a distinct entry.
	other := Add(s, entry("v2", "p1"))
	assert.Len(t, other.Entries, 2)
}

func TestAddDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	s := Add(Set{}, entry("v1", "p1"))
	_ = Add(s, entry("v1", "p2"))
	assert.Len(t, s.Entries, 1)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s := Add(Add(Add(Set{}, entry("v1", "p1")), entry("v1", "p2")), entry("v1", "p3"))

	s2 := Remove(s, entry("v1", "p2"))
	assert.Equal(t, []Entry{entry("v1", "p1"), entry("v1", "p3")}, s2.Entries)

	// Removing an absent entry is a no-op.
	s3 := Remove(s2, entry("v1", "p9"))
	assert.Equal(t, s2, s3)

	// Room freed by Remove can be reused.
	s4 := Add(s2, entry("v1", "p4"))
	assert.Len(t, s4.Entries, 3)
}

func TestZeroSetIsEmpty(t *testing.T) {
	t.Parallel()

	var s Set
	assert.Empty(t, s.Entries)
	assert.Equal(t, s, Remove(s, entry("v", "p")))
}
