package models

// Document is a loosely-typed source record as written by a client.
// Field names and value types vary between writers; canonicalisation into
// the typed models happens once, when a RecordSet is loaded.
type Document map[string]any

// ID returns the document's "id" field when it is a string.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}
