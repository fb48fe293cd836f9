package history_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/plastic-deck/internal/history"
	"github.com/temirov/plastic-deck/internal/plasticcli"
)

const (
	testServerConstant          = "acme@cloud"
	testGameRepositoryConstant  = "game"
	testArtRepositoryConstant   = "art"
	testToolsRepositoryConstant = "tools"
	testSkipMessageConstant     = "Skipping repository changesets"
)

type stubHistorySource struct {
	mutex           sync.Mutex
	repositoryNames []string
	listingError    error
	changesets      map[string][]plasticcli.ChangesetRecord
	changesetErrors map[string]error
	recordedQueries []plasticcli.ChangesetQuery
	recordedServers []string
}

func (source *stubHistorySource) ListRepositoryNames(_ context.Context, server string, _ plasticcli.ExecutableSelection) ([]string, error) {
	source.mutex.Lock()
	defer source.mutex.Unlock()
	source.recordedServers = append(source.recordedServers, server)
	if source.listingError != nil {
		return nil, source.listingError
	}
	return source.repositoryNames, nil
}

func (source *stubHistorySource) FindChangesets(_ context.Context, query plasticcli.ChangesetQuery, _ plasticcli.ExecutableSelection) ([]plasticcli.ChangesetRecord, error) {
	source.mutex.Lock()
	defer source.mutex.Unlock()
	source.recordedQueries = append(source.recordedQueries, query)
	if findError, failing := source.changesetErrors[query.Repository]; failing {
		return nil, findError
	}
	return source.changesets[query.Repository], nil
}

func changeset(identifier int64, date string, repository string) plasticcli.ChangesetRecord {
	return plasticcli.ChangesetRecord{ID: identifier, Author: "alice", Date: date, Comment: "work", Branch: "/main", Repository: repository}
}

func newPopulatedSource() *stubHistorySource {
	return &stubHistorySource{
		repositoryNames: []string{testGameRepositoryConstant, testArtRepositoryConstant, testToolsRepositoryConstant},
		changesets: map[string][]plasticcli.ChangesetRecord{
			testGameRepositoryConstant: {
				changeset(12, "2024-05-03T09:00:00", testGameRepositoryConstant),
				changeset(11, "2024-05-01T09:00:00", testGameRepositoryConstant),
			},
			testArtRepositoryConstant: {
				changeset(7, "2024-05-04T09:00:00", testArtRepositoryConstant),
				changeset(6, "2024-05-01T09:00:00", testArtRepositoryConstant),
			},
			testToolsRepositoryConstant: {
				changeset(3, "2024-05-02T09:00:00", testToolsRepositoryConstant),
			},
		},
	}
}

func intPointer(value int) *int {
	return &value
}

func identifiersOf(records []plasticcli.ChangesetRecord) []int64 {
	identifiers := make([]int64, 0, len(records))
	for _, record := range records {
		identifiers = append(identifiers, record.ID)
	}
	return identifiers
}

func TestNewAggregatorValidatesDependencies(testInstance *testing.T) {
	aggregator, creationError := history.NewAggregator(nil, zap.NewNop(), history.DefaultSettings())
	require.Nil(testInstance, aggregator)
	require.ErrorIs(testInstance, creationError, history.ErrSourceNotConfigured)

	aggregator, creationError = history.NewAggregator(newPopulatedSource(), nil, history.DefaultSettings())
	require.Nil(testInstance, aggregator)
	require.ErrorIs(testInstance, creationError, history.ErrLoggerNotConfigured)
}

func TestAggregatorCollectOrdersAndTruncates(testInstance *testing.T) {
	testCases := []struct {
		name                string
		limit               *int
		concurrency         int
		expectedIdentifiers []int64
	}{
		{
			name:                "default_limit_sequential",
			limit:               nil,
			concurrency:         1,
			expectedIdentifiers: []int64{7, 12, 3, 11, 6},
		},
		{
			name:                "default_limit_concurrent",
			limit:               nil,
			concurrency:         3,
			expectedIdentifiers: []int64{7, 12, 3, 11, 6},
		},
		{
			name:                "limit_below_total",
			limit:               intPointer(2),
			concurrency:         1,
			expectedIdentifiers: []int64{7, 12},
		},
		{
			name:                "limit_above_total",
			limit:               intPointer(50),
			concurrency:         2,
			expectedIdentifiers: []int64{7, 12, 3, 11, 6},
		},
		{
			name:                "zero_limit",
			limit:               intPointer(0),
			concurrency:         1,
			expectedIdentifiers: []int64{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source := newPopulatedSource()
			settings := history.DefaultSettings()
			settings.Concurrency = testCase.concurrency

			aggregator, creationError := history.NewAggregator(source, zap.NewNop(), settings)
			require.NoError(testInstance, creationError)

			records, collectError := aggregator.Collect(context.Background(), history.CollectionRequest{Server: testServerConstant, Limit: testCase.limit, Executable: plasticcli.DefaultExecutable{}})
			require.NoError(testInstance, collectError)
			require.NotNil(testInstance, records)
			require.Equal(testInstance, testCase.expectedIdentifiers, identifiersOf(records))

			queriedRepositories := make([]string, 0, len(source.recordedQueries))
			for _, query := range source.recordedQueries {
				require.Equal(testInstance, testServerConstant, query.Server)
				require.Equal(testInstance, plasticcli.DefaultRepositoryChangesetLimit, query.ResultLimit)
				queriedRepositories = append(queriedRepositories, query.Repository)
			}
			sort.Strings(queriedRepositories)
			require.Equal(testInstance, []string{testArtRepositoryConstant, testGameRepositoryConstant, testToolsRepositoryConstant}, queriedRepositories)
		})
	}
}

func TestAggregatorKeepsRepositoryOrderForEqualDates(testInstance *testing.T) {
	source := &stubHistorySource{
		repositoryNames: []string{testToolsRepositoryConstant, testGameRepositoryConstant},
		changesets: map[string][]plasticcli.ChangesetRecord{
			testToolsRepositoryConstant: {changeset(1, "2024-01-01", testToolsRepositoryConstant)},
			testGameRepositoryConstant:  {changeset(2, "2024-01-01", testGameRepositoryConstant)},
		},
	}
	settings := history.DefaultSettings()
	settings.Concurrency = 2

	aggregator, creationError := history.NewAggregator(source, zap.NewNop(), settings)
	require.NoError(testInstance, creationError)

	records, collectError := aggregator.Collect(context.Background(), history.CollectionRequest{Server: testServerConstant})
	require.NoError(testInstance, collectError)
	require.Equal(testInstance, []int64{1, 2}, identifiersOf(records))
}

func TestAggregatorSkipsFailingRepositories(testInstance *testing.T) {
	testCases := []struct {
		name                string
		failingRepositories []string
		expectedIdentifiers []int64
	}{
		{
			name:                "one_failing_repository",
			failingRepositories: []string{testArtRepositoryConstant},
			expectedIdentifiers: []int64{12, 3, 11},
		},
		{
			name:                "every_repository_failing",
			failingRepositories: []string{testArtRepositoryConstant, testGameRepositoryConstant, testToolsRepositoryConstant},
			expectedIdentifiers: []int64{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source := newPopulatedSource()
			source.changesetErrors = make(map[string]error)
			for _, failingRepository := range testCase.failingRepositories {
				source.changesetErrors[failingRepository] = plasticcli.SubcommandFailedError{Description: "cm find changesets", ExitCode: 1, StandardError: "denied"}
			}

			observerCore, observerLogs := observer.New(zap.DebugLevel)
			aggregator, creationError := history.NewAggregator(source, zap.New(observerCore), history.DefaultSettings())
			require.NoError(testInstance, creationError)

			records, collectError := aggregator.Collect(context.Background(), history.CollectionRequest{Server: testServerConstant})
			require.NoError(testInstance, collectError)
			require.NotNil(testInstance, records)
			require.Equal(testInstance, testCase.expectedIdentifiers, identifiersOf(records))

			skipEntries := observerLogs.FilterMessage(testSkipMessageConstant).All()
			require.Len(testInstance, skipEntries, len(testCase.failingRepositories))
			for _, skipEntry := range skipEntries {
				require.Equal(testInstance, zapcore.WarnLevel, skipEntry.Level)
			}
		})
	}
}

func TestAggregatorPropagatesListingFailures(testInstance *testing.T) {
	testCases := []struct {
		name         string
		listingError error
		expectedKind plasticcli.ErrorKind
	}{
		{
			name:         "no_repositories",
			listingError: plasticcli.NoRepositoriesFoundError{Server: testServerConstant, RawOutput: "Repository"},
			expectedKind: plasticcli.ErrorKindNoRepositoriesFound,
		},
		{
			name:         "listing_failed",
			listingError: plasticcli.SubcommandFailedError{Description: "Failed to list repos", ExitCode: 1, IncludeOutput: true},
			expectedKind: plasticcli.ErrorKindSubcommandFailed,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source := &stubHistorySource{listingError: testCase.listingError}
			aggregator, creationError := history.NewAggregator(source, zap.NewNop(), history.DefaultSettings())
			require.NoError(testInstance, creationError)

			records, collectError := aggregator.Collect(context.Background(), history.CollectionRequest{Server: testServerConstant})
			require.Nil(testInstance, records)
			errorKind, classified := plasticcli.KindOf(collectError)
			require.True(testInstance, classified)
			require.Equal(testInstance, testCase.expectedKind, errorKind)
			require.Empty(testInstance, source.recordedQueries)
		})
	}
}

func TestAggregatorRejectsNegativeLimit(testInstance *testing.T) {
	source := newPopulatedSource()
	aggregator, creationError := history.NewAggregator(source, zap.NewNop(), history.DefaultSettings())
	require.NoError(testInstance, creationError)

	_, collectError := aggregator.Collect(context.Background(), history.CollectionRequest{Server: testServerConstant, Limit: intPointer(-1)})
	errorKind, _ := plasticcli.KindOf(collectError)
	require.Equal(testInstance, plasticcli.ErrorKindInvalidInput, errorKind)
	require.Empty(testInstance, source.recordedServers)
}

func TestAggregatorReturnsContextErrorWhenCancelled(testInstance *testing.T) {
	source := newPopulatedSource()
	aggregator, creationError := history.NewAggregator(source, zap.NewNop(), history.DefaultSettings())
	require.NoError(testInstance, creationError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	records, collectError := aggregator.Collect(cancelledContext, history.CollectionRequest{Server: testServerConstant})
	require.Nil(testInstance, records)
	require.True(testInstance, errors.Is(collectError, context.Canceled))
	require.Empty(testInstance, source.recordedQueries)
}
