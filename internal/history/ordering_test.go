package history_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/plastic-deck/internal/history"
	"github.com/temirov/plastic-deck/internal/plasticcli"
)

func TestNewestDateTextFirst(testInstance *testing.T) {
	older := changeset(1, "2024-01-02", testGameRepositoryConstant)
	newer := changeset(2, "2024-01-10", testGameRepositoryConstant)

	require.Negative(testInstance, history.NewestDateTextFirst(newer, older))
	require.Positive(testInstance, history.NewestDateTextFirst(older, newer))
	require.Zero(testInstance, history.NewestDateTextFirst(older, older))
}

func TestSortAndTruncateDoesNotModifyInput(testInstance *testing.T) {
	records := []plasticcli.ChangesetRecord{
		changeset(1, "2024-01-01", testGameRepositoryConstant),
		changeset(2, "2024-03-01", testGameRepositoryConstant),
		changeset(3, "2024-02-01", testGameRepositoryConstant),
	}

	sortedRecords := history.SortAndTruncate(records, history.NewestDateTextFirst, 2)

	require.Equal(testInstance, []int64{2, 3}, identifiersOf(sortedRecords))
	require.Equal(testInstance, []int64{1, 2, 3}, identifiersOf(records))
	require.Empty(testInstance, history.SortAndTruncate(nil, history.NewestDateTextFirst, 5))
	require.NotNil(testInstance, history.SortAndTruncate(nil, history.NewestDateTextFirst, 5))
}
