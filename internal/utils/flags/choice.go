package flags

import (
	"fmt"
	"slices"
	"strings"
)

const (
	choicePlaceholderPrefixConstant  = "<"
	choicePlaceholderSuffixConstant  = ">"
	choiceSeparatorConstant          = "|"
	choiceUsageEmptyTemplateConstant = "`%s`"
	choiceUsageFullTemplateConstant  = "`%s` %s"
)

// FormatChoiceUsage renders a flag usage such as "`<JSON|yaml>` Output format." with the default choice capitalized.
func FormatChoiceUsage[Choice ~string](defaultChoice Choice, choices []Choice, description string) string {
	placeholder := choicePlaceholderPrefixConstant + strings.Join(displayChoices(defaultChoice, choices), choiceSeparatorConstant) + choicePlaceholderSuffixConstant
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplateConstant, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplateConstant, placeholder, description)
}

// MatchChoice returns the choice equal to value after trimming and lowercasing both sides.
func MatchChoice[Choice ~string](value string, choices []Choice) (Choice, bool) {
	normalizedValue := normalizeChoice(value)
	choiceIndex := slices.IndexFunc(choices, func(choice Choice) bool {
		return len(normalizedValue) > 0 && normalizeChoice(string(choice)) == normalizedValue
	})
	if choiceIndex < 0 {
		var unmatched Choice
		return unmatched, false
	}
	return choices[choiceIndex], true
}

func displayChoices[Choice ~string](defaultChoice Choice, choices []Choice) []string {
	normalizedDefault := normalizeChoice(string(defaultChoice))
	displayed := make([]string, 0, len(choices))
	normalizedSeen := make([]string, 0, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(string(choice))
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(normalizedChoice) == 0 || slices.Contains(normalizedSeen, normalizedChoice) {
			continue
		}
		normalizedSeen = append(normalizedSeen, normalizedChoice)

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		displayed = append(displayed, trimmedChoice)
	}

	return displayed
}

func normalizeChoice(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
