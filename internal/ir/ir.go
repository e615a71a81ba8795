package ir

// This file provides module-level lookups used while a module is built.
// The IR is textual SSA with typed pointers: every intermediate value is a
// fresh register and locals live in stack slots.

// String renders the module as IR text.
func (m *Module) String() string {
	return Print(m)
}

// Function returns the defined function called name, or nil.
func (m *Module) Function(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Declared reports whether name is defined or declared in the module.
func (m *Module) Declared(name string) bool {
	if m.Function(name) != nil {
		return true
	}
	for _, d := range m.Declares {
		if d.Name == name {
			return true
		}
	}
	return false
}
