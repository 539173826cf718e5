package action

import "canvassist/internal/canvas"

// Result is the outcome of one executed action. A failed action carries
// Err and no delta; both outcomes flow back to the orchestrator as
// ordinary results so the conversation can continue.
type Result struct {
	Content string
	Delta   *canvas.Delta
	Err     *Error
	Success bool
}

// NewSuccessResult creates a successful result.
func NewSuccessResult(content string, delta *canvas.Delta) Result {
	return Result{Content: content, Delta: delta, Success: true}
}

// NewErrorResult creates a failed result.
func NewErrorResult(err *Error) Result {
	return Result{Err: err, Success: false}
}

// ToMap converts the result to a map for a provider function response.
func (r Result) ToMap() map[string]any {
	result := make(map[string]any)

	if r.Success {
		result["success"] = true
		if r.Content != "" {
			result["content"] = r.Content
		}
		if !r.Delta.Empty() {
			result["changed"] = r.Delta
		}
	} else {
		result["success"] = false
		result["error"] = r.Err.Error()
		result["kind"] = string(r.Err.Kind)
	}

	return result
}
