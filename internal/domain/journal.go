package domain

import "time"

// ActionKind names a mutating step taken against the server
type ActionKind string

const (
	ActionDeleteAssets   ActionKind = "delete_assets"
	ActionClearDuplicate ActionKind = "clear_duplicate"
	ActionCreateStack    ActionKind = "create_stack"
)

// ActionRecord describes one executed step and how it ended
type ActionRecord struct {
	RunID       string     `json:"runId"`
	DuplicateID string     `json:"duplicateId"`
	Kind        ActionKind `json:"kind"`
	AssetIDs    []string   `json:"assetIds"`
	StackID     string     `json:"stackId,omitempty"`
	OK          bool       `json:"ok"`
	Error       string     `json:"error,omitempty"`
	At          time.Time  `json:"at"`
}

// Journal persists executed actions for later audit
type Journal interface {
	Record(rec ActionRecord) error
}
