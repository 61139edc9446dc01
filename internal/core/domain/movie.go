package domain

import (
	"encoding/json"
	"fmt"
)

// Document is an opaque catalog document (movie or series). The gateway does
// not model catalog content.
type Document map[string]any

// MovieRef is a catalog movie as stored in a wishlist. ID is the membership
// key; every other field of the catalog document is kept verbatim in Fields.
// Two refs are the same movie when their IDs match.
type MovieRef struct {
	ID     string         `bson:"_id"`
	Fields map[string]any `bson:",inline"`
}

// MarshalJSON flattens Fields next to "_id", reproducing the catalog document.
func (m MovieRef) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(m.Fields)+1)
	for k, v := range m.Fields {
		doc[k] = v
	}
	doc["_id"] = m.ID
	return json.Marshal(doc)
}

// UnmarshalJSON accepts any catalog document. "_id" must be a string when
// present; the remaining fields are kept untyped.
func (m *MovieRef) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	m.ID = ""
	if raw, ok := doc["_id"]; ok {
		id, isString := raw.(string)
		if !isString {
			return fmt.Errorf("movie _id must be a string, got %T", raw)
		}
		m.ID = id
		delete(doc, "_id")
	}

	m.Fields = nil
	if len(doc) > 0 {
		m.Fields = doc
	}
	return nil
}
