package solver

// Result is the outcome of solving one input.
//
// Handled is false when no rule applied; callers then fall back to ordinary
// conversation rather than reporting an error. Results are built once and
// not modified afterwards.
type Result struct {
	Handled bool     `json:"handled"`
	Answer  string   `json:"answer,omitempty"`
	Steps   []string `json:"steps,omitempty"`
}

// Unhandled is the result for inputs no rule understands.
func Unhandled() Result {
	return Result{}
}

func handled(answer string, steps ...string) Result {
	return Result{Handled: true, Answer: answer, Steps: steps}
}
