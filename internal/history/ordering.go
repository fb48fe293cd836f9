package history

import (
	"slices"
	"strings"

	"github.com/temirov/plastic-deck/internal/plasticcli"
)

// Ordering compares two changesets in the style of slices.SortFunc.
type Ordering func(first plasticcli.ChangesetRecord, second plasticcli.ChangesetRecord) int

// NewestDateTextFirst orders changesets by their date text, descending, using byte-wise comparison.
// Uniform ISO-like dates sort chronologically; mixed formats do not.
func NewestDateTextFirst(first plasticcli.ChangesetRecord, second plasticcli.ChangesetRecord) int {
	return strings.Compare(second.Date, first.Date)
}

// SortAndTruncate stably sorts records with ordering and keeps at most limit of them.
func SortAndTruncate(records []plasticcli.ChangesetRecord, ordering Ordering, limit int) []plasticcli.ChangesetRecord {
	sortedRecords := slices.Clone(records)
	if sortedRecords == nil {
		sortedRecords = make([]plasticcli.ChangesetRecord, 0)
	}
	slices.SortStableFunc(sortedRecords, ordering)
	if limit < len(sortedRecords) {
		sortedRecords = sortedRecords[:max(limit, 0)]
	}
	return sortedRecords
}
