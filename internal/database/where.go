package database

import (
	"strings"
)

// Where accumulates AND-ed conditions with dialect specific bind parameters.
type Where struct {
	placeholder Placeholder
	conditions  []string
	args        []any
}

// NewWhere creates an empty condition set for the given placeholder style.
func NewWhere(placeholder Placeholder) *Where {
	return &Where{placeholder: placeholder}
}

// Add appends "column op <param>" bound to arg.
func (w *Where) Add(column, op string, arg any) *Where {
	w.args = append(w.args, arg)
	w.conditions = append(w.conditions, column+" "+op+" "+w.placeholder.Format(len(w.args)))
	return w
}

// AddRaw appends a condition that takes no parameters.
func (w *Where) AddRaw(condition string) *Where {
	w.conditions = append(w.conditions, condition)
	return w
}

// Bind appends arg and returns its placeholder, for clauses after WHERE such as LIMIT.
func (w *Where) Bind(arg any) string {
	w.args = append(w.args, arg)
	return w.placeholder.Format(len(w.args))
}

// SQL renders " WHERE a AND b", or "" when no condition was added.
func (w *Where) SQL() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// Args returns the bound arguments in order.
func (w *Where) Args() []any {
	return w.args
}
