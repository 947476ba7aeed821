package domain

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Filterable fields understood by the ownership scoper and the stores that render filters.
const (
	FieldOwnerID = "owner_id"
	FieldStatus  = "status"
)

// Clause is an equality predicate on one field.
type Clause struct {
	Field string
	Value any
}

// Eq builds the clause field == value.
func Eq(field string, value any) Clause {
	return Clause{Field: field, Value: value}
}

// Filter is an immutable conjunction of clauses. The zero value matches everything.
// Every method returns a new Filter; the receiver is never modified.
type Filter struct {
	clauses   []Clause
	matchNone bool
}

// NewFilter builds a filter from the given clauses.
func NewFilter(clauses ...Clause) Filter {
	return Filter{clauses: slices.Clone(clauses)}
}

// MatchNone returns a filter guaranteed to match zero records.
func MatchNone() Filter {
	return Filter{matchNone: true}
}

// And returns the conjunction of f and the given clauses.
func (f Filter) And(clauses ...Clause) Filter {
	combined := make([]Clause, 0, len(f.clauses)+len(clauses))
	combined = append(combined, f.clauses...)
	combined = append(combined, clauses...)
	return Filter{clauses: combined, matchNone: f.matchNone}
}

// Merge returns the conjunction of f and other.
func (f Filter) Merge(other Filter) Filter {
	merged := f.And(other.clauses...)
	merged.matchNone = f.matchNone || other.matchNone
	return merged
}

// Has reports whether any clause constrains field.
func (f Filter) Has(field string) bool {
	return slices.ContainsFunc(f.clauses, func(c Clause) bool { return c.Field == field })
}

// IsMatchNone reports whether the filter can never match.
func (f Filter) IsMatchNone() bool {
	return f.matchNone
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return !f.matchNone && len(f.clauses) == 0
}

// Clauses returns a copy of the clauses.
func (f Filter) Clauses() []Clause {
	return slices.Clone(f.clauses)
}

// Matches evaluates the filter against a record's field values.
// A clause on a field missing from fields does not match.
func (f Filter) Matches(fields map[string]any) bool {
	if f.matchNone {
		return false
	}
	for _, c := range f.clauses {
		v, ok := fields[c.Field]
		if !ok || !sameValue(v, c.Value) {
			return false
		}
	}
	return true
}

func (f Filter) String() string {
	if f.matchNone {
		return "FALSE"
	}
	if len(f.clauses) == 0 {
		return "TRUE"
	}
	s := ""
	for i, c := range f.clauses {
		if i > 0 {
			s += " AND "
		}
		s += fmt.Sprintf("%s = %v", c.Field, c.Value)
	}
	return s
}

func sameValue(a, b any) bool {
	if ida, ok := ReferenceID(a); ok {
		idb, ok := ReferenceID(b)
		return ok && ida == idb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// Referenced is implemented by populated objects that can stand in for an owner identifier.
type Referenced interface {
	ReferenceID() uuid.UUID
}

// Owned is implemented by resources subject to ownership checks.
// Owner returns a uuid.UUID, a string form of one, or a Referenced object.
type Owned interface {
	Owner() any
}

// ReferenceID normalizes an owner reference to its identifier.
func ReferenceID(ref any) (uuid.UUID, bool) {
	switch v := ref.(type) {
	case uuid.UUID:
		return v, v != uuid.Nil
	case *uuid.UUID:
		if v == nil {
			return uuid.Nil, false
		}
		return *v, *v != uuid.Nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, false
		}
		return id, id != uuid.Nil
	case Referenced:
		id := v.ReferenceID()
		return id, id != uuid.Nil
	}
	return uuid.Nil, false
}
