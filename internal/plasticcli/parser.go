package plasticcli

import (
	"iter"
	"strconv"
	"strings"
)

const (
	changesetFieldSeparatorConstant     = "|"
	changesetLeadingFieldCountConstant  = 4
	changesetMinimumFieldCountConstant  = 5
	changesetIdentifierBaseConstant     = 10
	changesetIdentifierBitSizeConstant  = 64
	serverSegmentSeparatorConstant      = "@"
	cloudMarkerConstant                 = "cloud"
	serverQualifiedSegmentCountConstant = 3
	repositoryHeaderPrefixConstant      = "Repository"
	nameHeaderPrefixConstant            = "Name"
)

// SkipReason explains why a line of cm output produced no record.
type SkipReason string

// Skip reasons reported by the output scanners.
const (
	SkipReasonNone              SkipReason = SkipReason("")
	SkipReasonBlankLine         SkipReason = SkipReason("blank_line")
	SkipReasonHeaderLine        SkipReason = SkipReason("header_line")
	SkipReasonTooFewFields      SkipReason = SkipReason("too_few_fields")
	SkipReasonInvalidIdentifier SkipReason = SkipReason("invalid_identifier")
)

var (
	repositoryListingHeaderPrefixes = []string{repositoryHeaderPrefixConstant}
	repositoryNameHeaderPrefixes    = []string{repositoryHeaderPrefixConstant, nameHeaderPrefixConstant}
)

// ChangesetOutcome is the result of scanning one line of changeset output: either a record or a skip reason.
type ChangesetOutcome struct {
	Line   string
	Record ChangesetRecord
	Skip   SkipReason
}

// Skipped reports whether the line produced no record.
func (outcome ChangesetOutcome) Skipped() bool {
	return outcome.Skip != SkipReasonNone
}

// RepositoryNameOutcome is the result of scanning one line of repository listing output.
type RepositoryNameOutcome struct {
	Line string
	Name string
	Skip SkipReason
}

// Skipped reports whether the line produced no repository name.
func (outcome RepositoryNameOutcome) Skipped() bool {
	return outcome.Skip != SkipReasonNone
}

// ParseChangesetLine parses one id|owner|date|comment|branch line tagged with repository.
// The branch is the text after the last separator, so separators inside the comment stay in the comment.
func ParseChangesetLine(line string, repository string) (ChangesetRecord, SkipReason) {
	trimmedLine := strings.TrimSpace(line)
	if len(trimmedLine) == 0 {
		return ChangesetRecord{}, SkipReasonBlankLine
	}

	leadingFields := strings.SplitN(trimmedLine, changesetFieldSeparatorConstant, changesetLeadingFieldCountConstant)
	if len(leadingFields) < changesetLeadingFieldCountConstant {
		return ChangesetRecord{}, SkipReasonTooFewFields
	}

	commentAndBranch := leadingFields[changesetLeadingFieldCountConstant-1]
	branchSeparatorIndex := strings.LastIndex(commentAndBranch, changesetFieldSeparatorConstant)
	if branchSeparatorIndex < 0 {
		return ChangesetRecord{}, SkipReasonTooFewFields
	}

	changesetIdentifier, parseError := strconv.ParseInt(leadingFields[0], changesetIdentifierBaseConstant, changesetIdentifierBitSizeConstant)
	if parseError != nil {
		return ChangesetRecord{}, SkipReasonInvalidIdentifier
	}

	return ChangesetRecord{
		ID:         changesetIdentifier,
		Author:     leadingFields[1],
		Date:       leadingFields[2],
		Comment:    commentAndBranch[:branchSeparatorIndex],
		Branch:     commentAndBranch[branchSeparatorIndex+len(changesetFieldSeparatorConstant):],
		Repository: repository,
	}, SkipReasonNone
}

// ScanChangesets lazily parses every line of cm find changesets output.
func ScanChangesets(output string, repository string) iter.Seq[ChangesetOutcome] {
	return func(yield func(ChangesetOutcome) bool) {
		for line := range strings.Lines(output) {
			record, skipReason := ParseChangesetLine(line, repository)
			if !yield(ChangesetOutcome{Line: strings.TrimSpace(line), Record: record, Skip: skipReason}) {
				return
			}
		}
	}
}

// ParseChangesets returns the records of every well-formed line, silently dropping the rest.
func ParseChangesets(output string, repository string) []ChangesetRecord {
	records := make([]ChangesetRecord, 0)
	for outcome := range ScanChangesets(output, repository) {
		if outcome.Skipped() {
			continue
		}
		records = append(records, outcome.Record)
	}
	return records
}

// ScanRepositoryNames lazily classifies repository listing lines, skipping blank lines and lines starting with a header prefix.
func ScanRepositoryNames(output string, headerPrefixes []string) iter.Seq[RepositoryNameOutcome] {
	return func(yield func(RepositoryNameOutcome) bool) {
		for line := range strings.Lines(output) {
			if !yield(classifyRepositoryLine(strings.TrimSpace(line), headerPrefixes)) {
				return
			}
		}
	}
}

func classifyRepositoryLine(trimmedLine string, headerPrefixes []string) RepositoryNameOutcome {
	if len(trimmedLine) == 0 {
		return RepositoryNameOutcome{Line: trimmedLine, Skip: SkipReasonBlankLine}
	}
	for _, headerPrefix := range headerPrefixes {
		if strings.HasPrefix(trimmedLine, headerPrefix) {
			return RepositoryNameOutcome{Line: trimmedLine, Skip: SkipReasonHeaderLine}
		}
	}
	return RepositoryNameOutcome{Line: trimmedLine, Name: trimmedLine}
}

// ParseRepositoryRefs converts repository listing output into references paired with server, preserving input order.
func ParseRepositoryRefs(output string, server string) []RepositoryRef {
	repositories := make([]RepositoryRef, 0)
	for outcome := range ScanRepositoryNames(output, repositoryListingHeaderPrefixes) {
		if outcome.Skipped() {
			continue
		}
		repositories = append(repositories, RepositoryRef{Name: outcome.Name, Server: server})
	}
	return repositories
}

// ParseRepositoryNames extracts repository names, additionally treating lines starting with "Name" as headers.
func ParseRepositoryNames(output string) []string {
	repositoryNames := make([]string, 0)
	for outcome := range ScanRepositoryNames(output, repositoryNameHeaderPrefixes) {
		if outcome.Skipped() {
			continue
		}
		repositoryNames = append(repositoryNames, outcome.Name)
	}
	return repositoryNames
}

// ExtractServerFromRepositoryLine derives a cloud server identifier from an lrep line such as "repo@org@cloud".
// Three or more segments yield the last two joined by "@"; two segments yield the last segment alone.
func ExtractServerFromRepositoryLine(line string) (string, bool) {
	trimmedLine := strings.TrimSpace(line)
	if !strings.Contains(trimmedLine, serverSegmentSeparatorConstant) || !strings.Contains(trimmedLine, cloudMarkerConstant) {
		return "", false
	}

	segments := strings.Split(trimmedLine, serverSegmentSeparatorConstant)
	segmentCount := len(segments)

	server := segments[segmentCount-1]
	if segmentCount >= serverQualifiedSegmentCountConstant {
		server = segments[segmentCount-2] + serverSegmentSeparatorConstant + segments[segmentCount-1]
	}

	if len(server) == 0 {
		return "", false
	}
	return server, true
}

// DetectServerInRepositoryListing returns the first server extracted from lrep output, scanning top to bottom.
func DetectServerInRepositoryListing(output string) (string, bool) {
	for line := range strings.Lines(output) {
		if server, found := ExtractServerFromRepositoryLine(line); found {
			return server, true
		}
	}
	return "", false
}

// DetectServerInServerListing returns the first trimmed listservers line mentioning cloud.
func DetectServerInServerListing(output string) (string, bool) {
	for line := range strings.Lines(output) {
		trimmedLine := strings.TrimSpace(line)
		if strings.Contains(trimmedLine, cloudMarkerConstant) {
			return trimmedLine, true
		}
	}
	return "", false
}
