package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/photodedup/internal/dedup"
	"github.com/mmcdole/photodedup/internal/domain"
)

// FailureFunc is called once for every group whose processing failed
type FailureFunc func(Outcome)

// Executor applies the mutating half of a plan, one group at a time.
// A failure in one group never stops the batch.
type Executor struct {
	assets    domain.AssetRepository
	journal   domain.Journal
	onFailure FailureFunc
	logger    *slog.Logger
	now       func() time.Time
}

// NewExecutor creates a new executor. journal and onFailure may be nil.
func NewExecutor(
	assets domain.AssetRepository,
	journal domain.Journal,
	onFailure FailureFunc,
	logger *slog.Logger,
) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if onFailure == nil {
		onFailure = func(Outcome) {}
	}
	return &Executor{
		assets:    assets,
		journal:   journal,
		onFailure: onFailure,
		logger:    logger,
		now:       time.Now,
	}
}

// Deduplicate keeps the largest asset of the group, deletes the rest and
// then detaches the keeper from the group. If the delete fails the keeper
// is left untouched. A lone asset is only detached.
func (e *Executor) Deduplicate(ctx context.Context, g domain.DuplicateGroup) Outcome {
	outcome := Outcome{DuplicateID: g.DuplicateID, Operation: OperationDedupe}
	keeper, losers := dedup.Keeper(g.Assets)
	loserIDs := domain.AssetIDs(losers)

	if len(loserIDs) > 0 {
		if err := e.assets.DeleteAssets(ctx, loserIDs); err != nil {
			e.record(g.DuplicateID, domain.ActionDeleteAssets, loserIDs, "", err)
			return e.fail(outcome, domain.ActionDeleteAssets, err)
		}
		e.record(g.DuplicateID, domain.ActionDeleteAssets, loserIDs, "", nil)
	}

	keep := []string{keeper.ID}
	err := e.assets.ClearDuplicate(ctx, keep)
	e.record(g.DuplicateID, domain.ActionClearDuplicate, keep, "", err)
	if err != nil {
		return e.fail(outcome, domain.ActionClearDuplicate, err)
	}

	e.logger.Info("deduplicated group",
		"duplicateId", g.DuplicateID,
		"keeper", keeper.ID,
		"deleted", len(loserIDs),
	)
	return outcome
}

// Stack groups all assets of the group into a stack and then detaches
// them from the duplicate group.
func (e *Executor) Stack(ctx context.Context, g domain.DuplicateGroup) Outcome {
	outcome := Outcome{DuplicateID: g.DuplicateID, Operation: OperationStack}
	ids := g.AssetIDs()

	stack, err := e.assets.CreateStack(ctx, ids)
	if err != nil {
		e.record(g.DuplicateID, domain.ActionCreateStack, ids, "", err)
		return e.fail(outcome, domain.ActionCreateStack, err)
	}
	stackID := ""
	if stack != nil {
		stackID = stack.ID
	}
	e.record(g.DuplicateID, domain.ActionCreateStack, ids, stackID, nil)

	err = e.assets.ClearDuplicate(ctx, ids)
	e.record(g.DuplicateID, domain.ActionClearDuplicate, ids, "", err)
	if err != nil {
		return e.fail(outcome, domain.ActionClearDuplicate, err)
	}

	e.logger.Info("stacked group", "duplicateId", g.DuplicateID, "stackId", stackID, "assets", len(ids))
	return outcome
}

// DeduplicateAll runs Deduplicate over groups in order
func (e *Executor) DeduplicateAll(ctx context.Context, groups []domain.DuplicateGroup, progress domain.ProgressFunc) []Outcome {
	return e.each(ctx, groups, progress, e.Deduplicate)
}

// StackAll runs Stack over groups in order
func (e *Executor) StackAll(ctx context.Context, groups []domain.DuplicateGroup, progress domain.ProgressFunc) []Outcome {
	return e.each(ctx, groups, progress, e.Stack)
}

func (e *Executor) each(
	ctx context.Context,
	groups []domain.DuplicateGroup,
	progress domain.ProgressFunc,
	apply func(context.Context, domain.DuplicateGroup) Outcome,
) []Outcome {
	outcomes := make([]Outcome, 0, len(groups))
	for i, g := range groups {
		if progress != nil {
			progress(i+1, len(groups))
		}
		outcomes = append(outcomes, apply(ctx, g))
	}
	return outcomes
}

func (e *Executor) fail(o Outcome, step domain.ActionKind, err error) Outcome {
	o.FailedStep = step
	o.Err = err
	e.logger.Info("group failed", "duplicateId", o.DuplicateID, "operation", o.Operation, "step", step, "error", err)
	e.onFailure(o)
	return o
}

func (e *Executor) record(duplicateID string, kind domain.ActionKind, ids []string, stackID string, err error) {
	if e.journal == nil {
		return
	}
	rec := domain.ActionRecord{
		DuplicateID: duplicateID,
		Kind:        kind,
		AssetIDs:    ids,
		StackID:     stackID,
		OK:          err == nil,
		At:          e.now().UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if jerr := e.journal.Record(rec); jerr != nil {
		e.logger.Warn("failed to write journal", "duplicateId", duplicateID, "kind", kind, "error", jerr)
	}
}
