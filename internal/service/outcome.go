package service

import (
	"fmt"

	"github.com/mmcdole/photodedup/internal/domain"
)

// Operation is what was attempted for a duplicate group
type Operation string

const (
	OperationDedupe Operation = "dedupe"
	OperationStack  Operation = "stack"
)

// Outcome is the result of processing one duplicate group. FailedStep and
// Err are set when a step failed; later steps were then not attempted or,
// for the final step, were attempted and failed.
type Outcome struct {
	DuplicateID string
	Operation   Operation
	FailedStep  domain.ActionKind
	Err         error
}

// OK reports whether every step succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Message describes a failed outcome for the console
func (o Outcome) Message() string {
	if o.OK() {
		return ""
	}
	return fmt.Sprintf("Failed to %s for %s: %v", stepDescription(o.FailedStep), o.DuplicateID, o.Err)
}

func stepDescription(kind domain.ActionKind) string {
	switch kind {
	case domain.ActionDeleteAssets:
		return "delete assets"
	case domain.ActionClearDuplicate:
		return "clear duplicate"
	case domain.ActionCreateStack:
		return "stack assets"
	default:
		return string(kind)
	}
}

// CountOK returns how many outcomes succeeded
func CountOK(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}
