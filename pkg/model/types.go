package model

import internalmodel "github.com/goliatone/go-specviz/internal/model"

type (
	FieldType      = internalmodel.FieldType
	ValidationRule = internalmodel.ValidationRule
	Field          = internalmodel.Field
	FormModel      = internalmodel.FormModel
)

const (
	FieldTypeString  = internalmodel.FieldTypeString
	FieldTypeInteger = internalmodel.FieldTypeInteger
	FieldTypeNumber  = internalmodel.FieldTypeNumber
	FieldTypeBoolean = internalmodel.FieldTypeBoolean
	FieldTypeArray   = internalmodel.FieldTypeArray
	FieldTypeObject  = internalmodel.FieldTypeObject

	ValidationRuleMin       = internalmodel.ValidationRuleMin
	ValidationRuleMax       = internalmodel.ValidationRuleMax
	ValidationRuleMinLength = internalmodel.ValidationRuleMinLength
	ValidationRuleMaxLength = internalmodel.ValidationRuleMaxLength
	ValidationRulePattern   = internalmodel.ValidationRulePattern
	ValidationRuleMinItems  = internalmodel.ValidationRuleMinItems
	ValidationRuleMaxItems  = internalmodel.ValidationRuleMaxItems
)

// DefaultLabeler exposes the builder's label heuristic.
func DefaultLabeler(name string) string {
	return internalmodel.DefaultLabeler(name)
}
