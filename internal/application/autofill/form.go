// Package autofill fills label form fields from postal-code and employee-code lookups.
//
// Each flow runs when the user commits a field (blur in the browser). Responses are
// applied only if no newer commit happened on the same field in the meantime.
package autofill

import (
	"maps"
	"sync"
)

// Form is the set of fields a flow reads and writes
type Form interface {
	Value(id string) string
	SetValue(id, value string)
	Show(group string)
	Hide(group string)
	Focus(id string)
}

// Notifier shows a blocking message to the user
type Notifier interface {
	Alert(message string)
}

// User-facing messages
const (
	MsgPostalNotFound    = "CEP não encontrado. Verifique e tente novamente."
	MsgPostalUnavailable = "Não foi possível buscar o CEP. Tente novamente mais tarde."
	EmployeeNotFoundText = "Código não encontrado"
	EmployeeErrorText    = "Erro na busca"
)

// Outcome describes what a commit did to the form
type Outcome int

const (
	// OutcomeSkipped means the value was not eligible for a lookup
	OutcomeSkipped Outcome = iota
	// OutcomeCleared means dependent fields were cleared without a lookup
	OutcomeCleared
	// OutcomeFilled means dependent fields were filled from the lookup
	OutcomeFilled
	// OutcomeNotFound means the lookup had no match
	OutcomeNotFound
	// OutcomeFailed means the lookup could not be completed
	OutcomeFailed
	// OutcomeStale means a newer commit superseded this one; the form was left alone
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCleared:
		return "cleared"
	case OutcomeFilled:
		return "filled"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// MapForm is an in-memory Form, safe for concurrent flows
type MapForm struct {
	mu      sync.RWMutex
	values  map[string]string
	hidden  map[string]bool
	focused string
}

// NewMapForm creates a form holding a copy of values
func NewMapForm(values map[string]string) *MapForm {
	f := &MapForm{
		values: make(map[string]string, len(values)),
		hidden: make(map[string]bool),
	}
	maps.Copy(f.values, values)
	return f
}

func (f *MapForm) Value(id string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[id]
}

func (f *MapForm) SetValue(id, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[id] = value
}

func (f *MapForm) Show(group string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.hidden, group)
}

func (f *MapForm) Hide(group string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden[group] = true
}

func (f *MapForm) Focus(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = id
}

// Hidden reports whether group was hidden by a flow
func (f *MapForm) Hidden(group string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.hidden[group]
}

// Focused returns the last focused field
func (f *MapForm) Focused() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.focused
}

// Values returns a snapshot of all fields
func (f *MapForm) Values() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.values)
}
