package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	fieldNameTagSeparatorConstant          = ","
	ignoredFieldNameConstant               = "-"
	requiredRuleConstant                   = "required"
	greaterOrEqualRuleConstant             = "gte"
	minimumRuleConstant                    = "min"
	lessOrEqualRuleConstant                = "lte"
	maximumRuleConstant                    = "max"
	oneOfRuleConstant                      = "oneof"
	requiredDescriptionConstant            = "value required"
	atLeastDescriptionTemplateConstant     = "must be at least %s"
	atMostDescriptionTemplateConstant      = "must be at most %s"
	oneOfDescriptionTemplateConstant       = "must be one of: %s"
	genericRuleDescriptionTemplateConstant = "failed %s validation"
)

// FieldViolation describes one failed validation rule using the field name from the configured struct tag.
type FieldViolation struct {
	Field     string
	Rule      string
	Parameter string
}

// Describe renders the violation as a short human-readable message.
func (violation FieldViolation) Describe() string {
	switch violation.Rule {
	case requiredRuleConstant:
		return requiredDescriptionConstant
	case greaterOrEqualRuleConstant, minimumRuleConstant:
		return fmt.Sprintf(atLeastDescriptionTemplateConstant, violation.Parameter)
	case lessOrEqualRuleConstant, maximumRuleConstant:
		return fmt.Sprintf(atMostDescriptionTemplateConstant, violation.Parameter)
	case oneOfRuleConstant:
		return fmt.Sprintf(oneOfDescriptionTemplateConstant, violation.Parameter)
	default:
		return fmt.Sprintf(genericRuleDescriptionTemplateConstant, violation.Rule)
	}
}

// NewStructValidator builds a validator that reports field names from fieldNameTag (for example "json" or "mapstructure").
func NewStructValidator(fieldNameTag string) *validator.Validate {
	structValidator := validator.New(validator.WithRequiredStructEnabled())
	structValidator.RegisterTagNameFunc(func(field reflect.StructField) string {
		taggedName, _, _ := strings.Cut(field.Tag.Get(fieldNameTag), fieldNameTagSeparatorConstant)
		if len(taggedName) == 0 || taggedName == ignoredFieldNameConstant {
			return field.Name
		}
		return taggedName
	})
	return structValidator
}

// FieldViolations extracts the failed rules from a validator error. Other errors yield no violations.
func FieldViolations(validationError error) []FieldViolation {
	var validationErrors validator.ValidationErrors
	if !errors.As(validationError, &validationErrors) {
		return nil
	}

	violations := make([]FieldViolation, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		violations = append(violations, FieldViolation{
			Field:     fieldError.Field(),
			Rule:      fieldError.Tag(),
			Parameter: fieldError.Param(),
		})
	}
	return violations
}
