// Package inference connects the vision pipeline to an external model
// runtime. The runtime owns weights, tokenization and generation; this
// package only invokes it and normalizes what comes back.
package inference

import (
	"context"
	"errors"

	"github.com/kdduha/llama-vision/backend/internal/prompt"
)

// ErrUnavailable marks runtime failures that mean "try again later"
// (unreachable, overloaded, timed out).
var ErrUnavailable = errors.New("runtime unavailable")

// ErrMalformedOutput is returned when the runtime answers without a completion.
var ErrMalformedOutput = errors.New("malformed runtime output")

// Params are the sampling parameters for one invocation. They are validated
// before they get here.
type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Usage contains token accounting. Fields the runtime does not report are zero.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Completion struct {
	Text  string
	Usage Usage
}

// Runtime is the narrow entry point into the model runtime.
type Runtime interface {
	Complete(ctx context.Context, msg prompt.Message, params Params) (Completion, error)
}

// ModelLister is implemented by runtimes that can report the models they serve.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Handle is the process-wide view of the loaded model. It is built once at
// startup and only read afterwards. A nil *Handle means no model is loaded.
type Handle struct {
	name    string
	runtime Runtime
	vision  bool
}

func NewHandle(name string, rt Runtime, vision bool) *Handle {
	return &Handle{name: name, runtime: rt, vision: vision}
}

func (h *Handle) Loaded() bool { return h != nil && h.runtime != nil }

// Name returns the model name, or "" when nothing is loaded.
func (h *Handle) Name() string {
	if !h.Loaded() {
		return ""
	}
	return h.name
}

// VisionEnabled reports whether the runtime was started with an image
// projector.
func (h *Handle) VisionEnabled() bool { return h.Loaded() && h.vision }

func (h *Handle) Runtime() Runtime {
	if h == nil {
		return nil
	}
	return h.runtime
}
