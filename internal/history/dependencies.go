package history

import (
	"context"

	"github.com/temirov/plastic-deck/internal/plasticcli"
)

// RepositoryNameLister lists the repository names hosted on a server.
type RepositoryNameLister interface {
	ListRepositoryNames(executionContext context.Context, server string, selection plasticcli.ExecutableSelection) ([]string, error)
}

// ChangesetFinder retrieves the recent changesets of a single repository.
type ChangesetFinder interface {
	FindChangesets(executionContext context.Context, query plasticcli.ChangesetQuery, selection plasticcli.ExecutableSelection) ([]plasticcli.ChangesetRecord, error)
}

// RepositoryHistorySource combines the listing and changeset queries; plasticcli.Client satisfies it.
type RepositoryHistorySource interface {
	RepositoryNameLister
	ChangesetFinder
}
