package value

import "sort"

// Env maps variable names to their current values.
type Env map[string]Value

// Clone returns a copy whose arrays do not share backing storage with e.
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v.Clone()
	}
	return out
}

// Names returns the variable names in sorted order.
func (e Env) Names() []string {
	names := make([]string, 0, len(e))
	for k := range e {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
