package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionsValueScan(t *testing.T) {
	meal := uuid.New()
	in := Selections{"lunch-0": meal}

	raw, err := in.Value()
	require.NoError(t, err)

	var out Selections
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)
}

func TestSelectionsCloneIsIndependent(t *testing.T) {
	in := Selections{"lunch-0": uuid.New()}
	cp := in.Clone()
	cp["dinner-0"] = uuid.New()
	assert.Len(t, in, 1)
	assert.Len(t, cp, 2)
}

func TestAddressLabelSkipsEmptyParts(t *testing.T) {
	floor := "2"
	a := Address{Governorate: "Hawalli", Area: "Salmiya", Block: "10", Street: "5", HouseNumber: "12", Floor: &floor}
	assert.Equal(t, "Hawalli, Salmiya, block 10, street 5, house 12, floor 2", a.Label())

	raw, err := a.Value()
	require.NoError(t, err)
	var back Address
	require.NoError(t, back.Scan(raw))
	assert.Equal(t, a, back)
}
