package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/kdduha/llama-vision/backend/internal/apperr"
	"github.com/kdduha/llama-vision/backend/internal/prompt"
	"github.com/rs/zerolog"
)

type Invoker struct {
	logger  zerolog.Logger
	runtime Runtime
}

func NewInvoker(logger zerolog.Logger, rt Runtime) *Invoker {
	return &Invoker{
		logger:  logger.With().Str("component", "invoker").Logger(),
		runtime: rt,
	}
}

// Invoke runs one completion. Every failure, panics included, comes back as a
// model error; unavailability maps to 503, anything else to 500.
func (i *Invoker) Invoke(ctx context.Context, msg prompt.Message, params Params) (text string, usage Usage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperr.Model("Inference failed", fmt.Errorf("runtime panic: %v", rec)).
				WithDetails("panic", fmt.Sprint(rec))
		}
	}()

	start := time.Now()
	completion, err := i.runtime.Complete(ctx, msg, params)
	if err != nil {
		i.logger.Error().Err(err).Dur("dur", time.Since(start)).Msg("inference failed")
		if isUnavailable(err) {
			return "", Usage{}, apperr.Unavailable("Model runtime unavailable", err).
				WithDetails("error", err.Error())
		}
		return "", Usage{}, apperr.Model("Inference failed", err).
			WithDetails("error", err.Error())
	}

	i.logger.Debug().
		Dur("dur", time.Since(start)).
		Int("prompt_tokens", completion.Usage.PromptTokens).
		Int("completion_tokens", completion.Usage.CompletionTokens).
		Msg("inference done")

	return completion.Text, completion.Usage, nil
}

func isUnavailable(err error) bool {
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
