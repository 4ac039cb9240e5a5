// Package filter describes query predicates as plain data. Domain code builds
// []Item values; storage adapters translate them to SQL and tests evaluate
// them in memory.
package filter

import (
	"fmt"
)

// ComparisonType is the comparison applied by an Item.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	LessOrEqual    ComparisonType = "lte"
	Greater        ComparisonType = "gt"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains"  // ILIKE %val%
	NotContains    ComparisonType = "ncontains" // NOT ILIKE %val%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

// Item is a single predicate over one column.
type Item struct {
	Field    string         `json:"field"`
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

func (i Item) String() string {
	return fmt.Sprintf("%s %s %v", i.Field, i.Operator, i.Value)
}

// Eq is shorthand for an Equal item.
func Eq(field string, value any) Item {
	return Item{Field: field, Operator: Equal, Value: value}
}

// Gt is shorthand for a Greater item.
func Gt(field string, value any) Item {
	return Item{Field: field, Operator: Greater, Value: value}
}

// Gte is shorthand for a GreaterOrEqual item.
func Gte(field string, value any) Item {
	return Item{Field: field, Operator: GreaterOrEqual, Value: value}
}

// Lt is shorthand for a Less item.
func Lt(field string, value any) Item {
	return Item{Field: field, Operator: Less, Value: value}
}

// In is shorthand for an InList item.
func In(field string, values any) Item {
	return Item{Field: field, Operator: InList, Value: values}
}

// NotDeleted excludes soft-deleted rows of the given table alias. An empty
// alias means the bare column.
func NotDeleted(alias string) Item {
	field := "deletion_mark"
	if alias != "" {
		field = alias + ".deletion_mark"
	}
	return Eq(field, false)
}

// Find returns the first item for field.
func Find(items []Item, field string) (Item, bool) {
	for _, it := range items {
		if it.Field == field {
			return it, true
		}
	}
	return Item{}, false
}
