package query

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrEmptyParamName is returned when binding without a parameter name
	ErrEmptyParamName = errors.New("parameter name is required")

	// ErrNilParamValue is returned when binding a nil value
	ErrNilParamValue = errors.New("parameter value is required")
)

type paramSlot struct {
	name  string
	value interface{}
	bound bool
}

// Params is the parameter table of one parsed statement. Every @name
// occurrence in the query text owns a slot, in text order; several slots
// may share a name. Values placed in a statement's conditions hold handles
// into this table, so a Bind is visible to every holder without rebuilding
// the statement.
//
// Params is safe for concurrent use. The table is shared with the manager
// executing the statement, so binding while an execution is in flight is
// visible to that execution.
type Params struct {
	mu    sync.RWMutex
	slots []paramSlot
}

// NewParams creates an empty parameter table
func NewParams() *Params {
	return &Params{}
}

// Add declares a new slot and returns a Value referencing it
func (p *Params) Add(name string) Value {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots = append(p.slots, paramSlot{name: name})
	return Value{kind: ValueParam, params: p, slot: len(p.slots) - 1}
}

// Bind sets every slot named name to value. Binding a name that was never
// declared is a no-op. Rebinding replaces the previous value. A Value is
// resolved first, and a typed Value is converted with the default converters.
func (p *Params) Bind(name string, value interface{}) error {
	if name == "" {
		return ErrEmptyParamName
	}
	if value == nil {
		return ErrNilParamValue
	}
	if v, ok := value.(Value); ok {
		resolved, err := v.Coerce()
		if err != nil {
			return err
		}
		value = resolved
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.slots {
		if p.slots[i].name == name {
			p.slots[i].value = value
			p.slots[i].bound = true
		}
	}
	return nil
}

// IsEmpty reports whether no slot is left unbound. A table without slots is
// empty.
func (p *Params) IsEmpty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, slot := range p.slots {
		if !slot.bound {
			return false
		}
	}
	return true
}

// Names returns the distinct names of the slots that are still unbound
func (p *Params) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.names(func(s paramSlot) bool { return !s.bound })
}

// ParameterNames returns the distinct names of every declared slot in
// declaration order
func (p *Params) ParameterNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.names(func(paramSlot) bool { return true })
}

func (p *Params) names(keep func(paramSlot) bool) []string {
	seen := make(map[string]bool)
	var names []string
	for _, slot := range p.slots {
		if !keep(slot) || seen[slot.name] {
			continue
		}
		seen[slot.name] = true
		names = append(names, slot.name)
	}
	return names
}

// Len returns the number of declared slots
func (p *Params) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.slots)
}

// Value returns the bound value for name
func (p *Params) Value(name string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, slot := range p.slots {
		if slot.name == name && slot.bound {
			return slot.value, true
		}
	}
	return nil, false
}

// Values returns a snapshot of the bound values keyed by name
func (p *Params) Values() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	values := make(map[string]interface{})
	for _, slot := range p.slots {
		if slot.bound {
			values[slot.name] = slot.value
		}
	}
	return values
}

// check fails with an unbound parameter error naming the unbound slots
func (p *Params) check() error {
	if p.IsEmpty() {
		return nil
	}
	return unboundError(p.Names())
}

func (p *Params) nameAt(slot int) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if slot < 0 || slot >= len(p.slots) {
		return ""
	}
	return p.slots[slot].name
}

func (p *Params) valueAt(slot int) (interface{}, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if slot < 0 || slot >= len(p.slots) {
		return nil, unboundError(nil)
	}
	s := p.slots[slot]
	if !s.bound {
		return nil, unboundError([]string{s.name})
	}
	return s.value, nil
}

func (p *Params) String() string {
	return "Params{" + strings.Join(p.ParameterNames(), ", ") + "}"
}
