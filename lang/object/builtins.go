package object

// BuiltinNames lists the built-in function names in the fixed order the
// compiler assigns OpGetBuiltin indices. The VM's builtin table lists the
// same functions in this same order; the evaluator keeps its own map by name.
var BuiltinNames = []string{"len", "puts", "first", "last", "rest", "push"}

// BuiltinIndex returns the OpGetBuiltin operand for name, or -1 if name is
// not a built-in.
func BuiltinIndex(name string) int {
	for i, n := range BuiltinNames {
		if n == name {
			return i
		}
	}
	return -1
}
