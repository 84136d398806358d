package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferingBatch_Partitions(t *testing.T) {
	items := []map[string]any{
		{"type": "cempasuchil"},
		{"type": "pizza"},
		{"type": "vela", "memorialId": "mem-1"},
		{"memorialId": "mem-2"},
	}

	res := OfferingBatch(items)
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Valid, 2)
	require.Len(t, res.Invalid, 2)

	assert.Equal(t, 1, res.Invalid[0].Index)
	assert.Contains(t, res.Invalid[0].Errors, `offering type "pizza" is not recognized`)
	assert.Equal(t, 3, res.Invalid[1].Index)
	assert.Contains(t, res.Invalid[1].Errors, "offering type is required and must be text")
}

func TestMemorialBatch_DoesNotShortCircuit(t *testing.T) {
	items := []map[string]any{
		{"altarLevel": 9},
		{"name": "Juan García", "relationship": "padre"},
		{"name": "", "relationship": "madre"},
	}

	res := MemorialBatch(items)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, "Juan García", res.Valid[0].Name)

	// Every bad item is reported, each with its own error list.
	require.Len(t, res.Invalid, 2)
	assert.Equal(t, 0, res.Invalid[0].Index)
	assert.Equal(t, 2, res.Invalid[1].Index)
	assert.Contains(t, res.Invalid[1].Errors, "name cannot be empty after sanitization")
}

func TestFamilyGroupBatch(t *testing.T) {
	items := []map[string]any{
		{
			"name": "Familia García",
			"members": []any{
				map[string]any{"userId": "user-1", "email": "rosa@example.com", "role": "admin"},
			},
		},
		{"name": "Sin Miembros"},
	}

	res := FamilyGroupBatch(items)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Valid, 1)
	require.Len(t, res.Invalid, 1)
	assert.Contains(t, res.Invalid[0].Errors, "group must have at least one member")
}

func TestBatch_EmptyInput(t *testing.T) {
	res := MemorialBatch(nil)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Valid)
	assert.NotNil(t, res.Invalid)
}
