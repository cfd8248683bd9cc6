package dto

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// plainMetadata copies a stored JSON map into plain JSON values. Rows scanned
// back from the database carry json.Number while freshly built maps carry
// float64; both come out as float64 here.
func plainMetadata(metadata datatypes.JSONMap) map[string]interface{} {
	if metadata == nil {
		return nil
	}

	raw, err := json.Marshal(map[string]interface{}(metadata))
	if err == nil {
		var plain map[string]interface{}
		if err := json.Unmarshal(raw, &plain); err == nil {
			return plain
		}
	}

	copied := make(map[string]interface{}, len(metadata))
	for key, value := range metadata {
		copied[key] = value
	}
	return copied
}
