package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineKey(t *testing.T) {
	variant := "v1"
	empty := ""

	assert.Equal(t, "p1", LineKey("p1", nil))
	assert.Equal(t, "p1", LineKey("p1", &empty))
	assert.Equal(t, "p1:v1", LineKey("p1", &variant))
}

func TestAdd_CoalescesSameLine(t *testing.T) {
	c := Cart{}
	c.Add(Line{ProductID: "p1", Title: "Mug", PriceCents: 1500, Quantity: 2})
	c.Add(Line{ProductID: "p1", Title: "Mug", PriceCents: 1500, Quantity: 3})

	require.Len(t, c, 1)
	assert.Equal(t, 5, c["p1"].Quantity)
	assert.Equal(t, int64(7500), c.TotalCents())
}

func TestAdd_VariantsAreSeparateLines(t *testing.T) {
	red, blue := "red", "blue"

	c := Cart{}
	c.Add(Line{ProductID: "p1", VariantID: &red, PriceCents: 1000, Quantity: 1})
	c.Add(Line{ProductID: "p1", VariantID: &blue, PriceCents: 1000, Quantity: 1})

	require.Len(t, c, 2)
	assert.Equal(t, int64(2000), c.TotalCents())
}

func TestUpdate(t *testing.T) {
	c := Cart{}
	c.Add(Line{ProductID: "p1", PriceCents: 1000, Quantity: 1})

	require.NoError(t, c.Update("p1", 4))
	assert.Equal(t, 4, c["p1"].Quantity)

	err := c.Update("missing", 2)
	assert.ErrorIs(t, err, ErrLineNotFound)
	require.Len(t, c, 1)
	assert.Equal(t, 4, c["p1"].Quantity)
}

func TestRemove_MissingKeyIsNoop(t *testing.T) {
	c := Cart{}
	c.Add(Line{ProductID: "p1", PriceCents: 1000, Quantity: 1})

	c.Remove("missing")
	c.Remove("p1")

	assert.Empty(t, c)
	assert.Equal(t, int64(0), c.TotalCents())
}
