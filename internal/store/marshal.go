package store

import (
	"encoding/json"
	"fmt"

	"github.com/ofrenda/core/internal/entity"
)

// Records are persisted as JSON documents in the data column. Dates inside
// the documents travel as RFC 3339 strings (time.Time's JSON encoding) and
// rehydrate to time.Time on read.

func marshalDoc(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return string(data), nil
}

func unmarshalMemorial(data string) (entity.Memorial, error) {
	var m entity.Memorial
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return entity.Memorial{}, fmt.Errorf("unmarshal memorial: %w", err)
	}
	return m, nil
}

func unmarshalGroup(data string) (entity.FamilyGroup, error) {
	var g entity.FamilyGroup
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return entity.FamilyGroup{}, fmt.Errorf("unmarshal family group: %w", err)
	}
	return g, nil
}

func unmarshalOffering(data string) (entity.VirtualOffering, error) {
	var o entity.VirtualOffering
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return entity.VirtualOffering{}, fmt.Errorf("unmarshal offering: %w", err)
	}
	return o, nil
}

func unmarshalPreferences(data string) (entity.UserPreferences, error) {
	var p entity.UserPreferences
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return entity.UserPreferences{}, fmt.Errorf("unmarshal preferences: %w", err)
	}
	return p, nil
}

// boolInt mirrors a boolean into the 0/1 encoding used by the typed
// columns.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
