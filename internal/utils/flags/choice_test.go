package flags_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/plastic-deck/internal/utils/flags"
)

type testOutputFormat string

const (
	testOutputFormatJSON testOutputFormat = "json"
	testOutputFormatYAML testOutputFormat = "yaml"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first_choice",
			defaultChoice:  "structured",
			choices:        []string{"structured", "console"},
			description:    "Logging format.",
			expectedOutput: "`<STRUCTURED|console>` Logging format.",
		},
		{
			name:           "default_second_choice",
			defaultChoice:  "info",
			choices:        []string{"debug", "info", "warn", "error"},
			description:    "Logging level.",
			expectedOutput: "`<debug|INFO|warn|error>` Logging level.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "debug",
			choices:        []string{"debug", "info"},
			expectedOutput: "`<DEBUG|info>`",
		},
		{
			name:           "duplicates_and_blanks_ignored",
			defaultChoice:  "console",
			choices:        []string{"console", " Console ", "", "structured"},
			description:    "Logging format.",
			expectedOutput: "`<CONSOLE|structured>` Logging format.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedOutput, flags.FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestFormatChoiceUsageAcceptsNamedStringTypes(testInstance *testing.T) {
	usage := flags.FormatChoiceUsage(testOutputFormatJSON, []testOutputFormat{testOutputFormatJSON, testOutputFormatYAML}, "Output format.")
	require.Equal(testInstance, "`<JSON|yaml>` Output format.", usage)
}

func TestMatchChoice(testInstance *testing.T) {
	choices := []testOutputFormat{testOutputFormatJSON, testOutputFormatYAML}

	testCases := []struct {
		name           string
		value          string
		expectedChoice testOutputFormat
		expectedMatch  bool
	}{
		{name: "exact", value: "yaml", expectedChoice: testOutputFormatYAML, expectedMatch: true},
		{name: "case_and_whitespace", value: "  JSON ", expectedChoice: testOutputFormatJSON, expectedMatch: true},
		{name: "unknown", value: "xml"},
		{name: "blank", value: "   "},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			matchedChoice, matched := flags.MatchChoice(testCase.value, choices)
			require.Equal(testInstance, testCase.expectedMatch, matched)
			require.Equal(testInstance, testCase.expectedChoice, matchedChoice)
		})
	}
}
