package models

import (
	"encoding/json"
	"time"
)

// AuditAction is the kind of mutation recorded.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditEntry is an append-only log line for a source record mutation.
type AuditEntry struct {
	ID        string          `json:"id"`
	Action    AuditAction     `json:"action"`
	Store     Collection      `json:"store"`
	ItemID    string          `json:"item_id"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
