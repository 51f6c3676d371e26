package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDetectsAddedModifiedDeleted(t *testing.T) {
	stored := map[string]string{
		"a.go": "h1",
		"b.go": "h2",
		"c.go": "h3",
	}
	current := map[string]string{
		"a.go": "h1",       // unchanged
		"b.go": "h2-new",   // modified
		"d.go": "h4",       // added
	}

	cs := Compute(stored, current)

	assert.Equal(t, []string{"d.go"}, cs.Added)
	assert.Equal(t, []string{"b.go"}, cs.Modified)
	assert.Equal(t, []string{"c.go"}, cs.Deleted)
	assert.True(t, cs.HasChanges())
	assert.Equal(t, 3, cs.Total())
}

func TestComputeNoChanges(t *testing.T) {
	same := map[string]string{"a.go": "h1"}
	cs := Compute(same, map[string]string{"a.go": "h1"})
	assert.False(t, cs.HasChanges())
	assert.Equal(t, 0, cs.Total())
}

func TestComputeSortsOutput(t *testing.T) {
	current := map[string]string{"z.go": "1", "a.go": "2", "m.go": "3"}
	cs := Compute(map[string]string{}, current)
	assert.Equal(t, []string{"a.go", "m.go", "z.go"}, cs.Added)
}
