package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/photodedup/internal/dedup"
	"github.com/mmcdole/photodedup/internal/domain"
)

// PlanOptions narrows what a plan contains
type PlanOptions struct {
	SkipDedupe bool
	SkipStack  bool
}

// DuplicateService fetches duplicate groups and turns them into a plan
type DuplicateService struct {
	repo   domain.DuplicateRepository
	logger *slog.Logger
}

// NewDuplicateService creates a new duplicate service
func NewDuplicateService(repo domain.DuplicateRepository, logger *slog.Logger) *DuplicateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DuplicateService{repo: repo, logger: logger}
}

// Plan fetches every duplicate group and classifies it
func (s *DuplicateService) Plan(ctx context.Context, opts PlanOptions) (dedup.Plan, error) {
	groups, err := s.repo.GetDuplicates(ctx)
	if err != nil {
		s.logger.Info("failed to get duplicates", "error", err)
		return dedup.Plan{}, err
	}
	s.logger.Info("loaded duplicates", "count", len(groups))

	plan := dedup.Classify(groups, s.logger)
	if opts.SkipDedupe {
		plan.Dedup = nil
	}
	if opts.SkipStack {
		plan.Stack = nil
	}
	return plan, nil
}

// Describe renders one line per planned group, for dry runs
func Describe(plan dedup.Plan) []string {
	lines := make([]string, 0, len(plan.Dedup)+len(plan.Stack))
	for _, g := range plan.Dedup {
		keeper, losers := dedup.Keeper(g.Assets)
		if len(losers) == 0 {
			lines = append(lines, fmt.Sprintf("dedupe %s: detach %s", g.DuplicateID, keeper.ID))
			continue
		}
		lines = append(lines, fmt.Sprintf("dedupe %s: keep %s (%d bytes), delete %s",
			g.DuplicateID, keeper.ID, keeper.FileSize(), strings.Join(domain.AssetIDs(losers), ", ")))
	}
	for _, g := range plan.Stack {
		lines = append(lines, fmt.Sprintf("stack  %s: %s",
			g.DuplicateID, strings.Join(g.AssetIDs(), ", ")))
	}
	return lines
}
