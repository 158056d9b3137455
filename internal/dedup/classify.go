// Package dedup decides what to do with each duplicate group the server reports.
package dedup

import (
	"log/slog"
	"slices"

	"github.com/mmcdole/photodedup/internal/domain"
	"github.com/mmcdole/photodedup/internal/fieldpath"
)

var (
	pathChecksum    = fieldpath.Key("checksum")
	pathFileName    = fieldpath.Key("originalFileName")
	pathImageWidth  = fieldpath.Nested("exifInfo", "exifImageWidth")
	pathImageHeight = fieldpath.Nested("exifInfo", "exifImageHeight")
)

// rawPairs lists the raw/processed extension pairs, sorted, that get stacked
var rawPairs = [][2]string{
	{"cr2", "jpg"},
	{"jpg", "orf"},
	{"jpg", "psd"},
}

// Rule identifies which dedup rule matched a group
type Rule int

const (
	RuleNone Rule = iota
	RuleChecksum
	RuleNameAndDimensions
	RuleBoth
)

func (r Rule) String() string {
	switch r {
	case RuleChecksum:
		return "checksum"
	case RuleNameAndDimensions:
		return "name+dimensions"
	case RuleBoth:
		return "checksum,name+dimensions"
	default:
		return "none"
	}
}

// Plan is the classification of a batch of duplicate groups.
// Both lists preserve the order the groups were received in.
type Plan struct {
	Dedup []domain.DuplicateGroup
	Stack []domain.DuplicateGroup
}

// SameChecksum reports whether every asset has an identical checksum
func SameChecksum(assets []domain.Asset) bool {
	return fieldpath.AllEqual(documents(assets), pathChecksum, fieldpath.Identity)
}

// SameNameAndDimensions reports whether every asset has the same original
// file name (ignoring case) and the same EXIF width and height.
func SameNameAndDimensions(assets []domain.Asset) bool {
	docs := documents(assets)
	return fieldpath.AllEqual(docs, pathFileName, fieldpath.Lower) &&
		fieldpath.AllEqual(docs, pathImageWidth, fieldpath.Identity) &&
		fieldpath.AllEqual(docs, pathImageHeight, fieldpath.Identity)
}

// DedupRule returns which dedup rules the group satisfies. A single asset
// trivially matches both; an empty group matches none.
func DedupRule(g domain.DuplicateGroup) Rule {
	if len(g.Assets) == 0 {
		return RuleNone
	}

	checksum := SameChecksum(g.Assets)
	nameDims := SameNameAndDimensions(g.Assets)
	switch {
	case checksum && nameDims:
		return RuleBoth
	case checksum:
		return RuleChecksum
	case nameDims:
		return RuleNameAndDimensions
	default:
		return RuleNone
	}
}

// IsRawPair reports whether the group is exactly one raw file and its
// processed counterpart.
func IsRawPair(assets []domain.Asset) bool {
	if len(assets) != 2 {
		return false
	}
	exts := []string{assets[0].Extension(), assets[1].Extension()}
	slices.Sort(exts)
	return slices.Contains(rawPairs, [2]string{exts[0], exts[1]})
}

// Classify sorts groups into the dedup and stack lists. A group matching
// both dedup rules is listed once.
func Classify(groups []domain.DuplicateGroup, logger *slog.Logger) Plan {
	if logger == nil {
		logger = slog.Default()
	}

	var plan Plan
	for _, g := range groups {
		rule := DedupRule(g)
		if rule != RuleNone {
			plan.Dedup = append(plan.Dedup, g)
		}
		if IsRawPair(g.Assets) {
			plan.Stack = append(plan.Stack, g)
		}
		logger.Debug("classified duplicate group",
			"duplicateId", g.DuplicateID,
			"assets", len(g.Assets),
			"dedupRule", rule.String(),
			"rawPair", IsRawPair(g.Assets),
		)
	}

	logger.Info("classified duplicates",
		"groups", len(groups),
		"dedup", len(plan.Dedup),
		"stack", len(plan.Stack),
	)
	return plan
}

// Keeper splits assets into the one to keep (largest file) and the rest.
// Ties keep their received order.
func Keeper(assets []domain.Asset) (keeper domain.Asset, losers []domain.Asset) {
	if len(assets) == 0 {
		return domain.Asset{}, nil
	}
	sorted := slices.Clone(assets)
	slices.SortStableFunc(sorted, func(a, b domain.Asset) int {
		switch {
		case a.FileSize() > b.FileSize():
			return -1
		case a.FileSize() < b.FileSize():
			return 1
		default:
			return 0
		}
	})
	return sorted[0], sorted[1:]
}

func documents(assets []domain.Asset) []map[string]any {
	docs := make([]map[string]any, len(assets))
	for i, a := range assets {
		docs[i] = a.Document()
	}
	return docs
}
