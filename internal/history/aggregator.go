package history

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/plastic-deck/internal/plasticcli"
)

const (
	// DefaultResultLimit is the number of changesets returned when a request sets no limit.
	DefaultResultLimit = 100
	// DefaultConcurrency queries one repository at a time.
	DefaultConcurrency = 1

	limitFieldNameConstant             = "limit"
	nonNegativeValueMessageConstant    = "must not be negative"
	sourceNotConfiguredMessageConstant = "repository history source not configured"
	loggerNotConfiguredMessageConstant = "history logger not configured"
	collectionStartedMessageConstant   = "Collecting changesets"
	repositorySkippedMessageConstant   = "Skipping repository changesets"
	collectionFinishedMessageConstant  = "Collected changesets"
	serverLogFieldConstant             = "server"
	repositoryLogFieldConstant         = "repository"
	repositoryCountLogFieldConstant    = "repository_count"
	recordCountLogFieldConstant        = "record_count"
	limitLogFieldConstant              = "limit"
)

var (
	// ErrSourceNotConfigured indicates an aggregator was constructed without a history source.
	ErrSourceNotConfigured = errors.New(sourceNotConfiguredMessageConstant)
	// ErrLoggerNotConfigured indicates an aggregator was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
)

// Settings tunes the aggregator fan-out.
type Settings struct {
	Concurrency              int
	RepositoryChangesetLimit int
	DefaultResultLimit       int
	Ordering                 Ordering
}

// DefaultSettings returns sequential fan-out with 20 changesets per repository and 100 in total.
func DefaultSettings() Settings {
	return Settings{
		Concurrency:              DefaultConcurrency,
		RepositoryChangesetLimit: plasticcli.DefaultRepositoryChangesetLimit,
		DefaultResultLimit:       DefaultResultLimit,
		Ordering:                 NewestDateTextFirst,
	}
}

func (settings Settings) sanitize() Settings {
	defaults := DefaultSettings()
	sanitized := settings
	if sanitized.Concurrency <= 0 {
		sanitized.Concurrency = defaults.Concurrency
	}
	if sanitized.RepositoryChangesetLimit <= 0 {
		sanitized.RepositoryChangesetLimit = defaults.RepositoryChangesetLimit
	}
	if sanitized.DefaultResultLimit <= 0 {
		sanitized.DefaultResultLimit = defaults.DefaultResultLimit
	}
	if sanitized.Ordering == nil {
		sanitized.Ordering = defaults.Ordering
	}
	return sanitized
}

// CollectionRequest describes one aggregation. A nil Limit selects the configured default.
type CollectionRequest struct {
	Server     string
	Limit      *int
	Executable plasticcli.ExecutableSelection
}

// Aggregator fans out changeset queries across the repositories of a server.
type Aggregator struct {
	source   RepositoryHistorySource
	logger   *zap.Logger
	settings Settings
}

// NewAggregator constructs an Aggregator over source.
func NewAggregator(source RepositoryHistorySource, logger *zap.Logger, settings Settings) (*Aggregator, error) {
	if source == nil {
		return nil, ErrSourceNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	return &Aggregator{source: source, logger: logger, settings: settings.sanitize()}, nil
}

// Collect lists the repositories of request.Server, gathers their recent changesets, and returns the
// newest request.Limit of them. Failing repositories are skipped; a failing repository listing is returned.
func (aggregator *Aggregator) Collect(executionContext context.Context, request CollectionRequest) ([]plasticcli.ChangesetRecord, error) {
	resultLimit := aggregator.settings.DefaultResultLimit
	if request.Limit != nil {
		resultLimit = *request.Limit
	}
	if resultLimit < 0 {
		return nil, plasticcli.InvalidInputError{FieldName: limitFieldNameConstant, Message: nonNegativeValueMessageConstant}
	}

	repositoryNames, listingError := aggregator.source.ListRepositoryNames(executionContext, request.Server, request.Executable)
	if listingError != nil {
		return nil, listingError
	}

	aggregator.logger.Debug(
		collectionStartedMessageConstant,
		zap.String(serverLogFieldConstant, request.Server),
		zap.Int(repositoryCountLogFieldConstant, len(repositoryNames)),
		zap.Int(limitLogFieldConstant, resultLimit),
	)

	repositoryRecords := make([][]plasticcli.ChangesetRecord, len(repositoryNames))

	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(aggregator.settings.Concurrency)

	for repositoryIndex, repositoryName := range repositoryNames {
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			repositoryRecords[repositoryIndex] = aggregator.collectRepository(groupContext, request, repositoryName)
			return nil
		})
	}

	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	combinedRecords := make([]plasticcli.ChangesetRecord, 0)
	for _, records := range repositoryRecords {
		combinedRecords = append(combinedRecords, records...)
	}

	limitedRecords := SortAndTruncate(combinedRecords, aggregator.settings.Ordering, resultLimit)

	aggregator.logger.Debug(
		collectionFinishedMessageConstant,
		zap.String(serverLogFieldConstant, request.Server),
		zap.Int(recordCountLogFieldConstant, len(limitedRecords)),
	)

	return limitedRecords, nil
}

func (aggregator *Aggregator) collectRepository(executionContext context.Context, request CollectionRequest, repositoryName string) []plasticcli.ChangesetRecord {
	query := plasticcli.ChangesetQuery{
		Repository:  repositoryName,
		Server:      request.Server,
		ResultLimit: aggregator.settings.RepositoryChangesetLimit,
	}

	records, findError := aggregator.source.FindChangesets(executionContext, query, request.Executable)
	if findError != nil {
		aggregator.logger.Warn(
			repositorySkippedMessageConstant,
			zap.String(serverLogFieldConstant, request.Server),
			zap.String(repositoryLogFieldConstant, repositoryName),
			zap.Error(findError),
		)
		return nil
	}
	return records
}
