package intelligence

// ExecutionState describes what a caller should do with a Command.
type ExecutionState string

const (
	StateExecuted           ExecutionState = "executed"
	StateNeedsConfirmation  ExecutionState = "needs_confirmation"
	StateNeedsClarification ExecutionState = "needs_clarification"
)

// ConfirmationPolicy defines when commands may be applied without asking.
type ConfirmationPolicy struct {
	// AutoApplyWrites skips confirmation for high and medium confidence
	// writes. Low confidence writes always need clarification.
	AutoApplyWrites bool
}

// Evaluate determines the execution state for cmd. Queries are read-only
// and always execute. A low confidence write is never applied as if it
// were a confident match.
func (p ConfirmationPolicy) Evaluate(cmd *Command) ExecutionState {
	if !IsWriteAction(cmd.Action) {
		return StateExecuted
	}
	if cmd.Confidence == ConfidenceLow {
		return StateNeedsClarification
	}
	if p.AutoApplyWrites {
		return StateExecuted
	}
	return StateNeedsConfirmation
}
