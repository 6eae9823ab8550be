package workflow

// State represents a workflow state in an approval lifecycle. The concrete
// state sets (requisition and budget) are registered on their builders.
type State string

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
