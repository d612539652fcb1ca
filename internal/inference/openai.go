package inference

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/kdduha/llama-vision/backend/internal/prompt"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIRuntime talks to any OpenAI-compatible chat completions server, e.g.
// llama.cpp's llama-server started with an mmproj projector.
type OpenAIRuntime struct {
	client openai.Client
	model  string
}

func NewOpenAIRuntime(client openai.Client, model string) *OpenAIRuntime {
	return &OpenAIRuntime{
		client: client,
		model:  model,
	}
}

func (o *OpenAIRuntime) Complete(ctx context.Context, msg prompt.Message, params Params) (Completion, error) {
	req, err := o.buildRequest(msg, params)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := o.client.Chat.Completions.New(ctx, *req)
	if err != nil {
		return Completion{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("%w: no choices", ErrMalformedOutput)
	}

	return Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// ListModels returns the ids the server reports on /models.
func (o *OpenAIRuntime) ListModels(ctx context.Context) ([]string, error) {
	page, err := o.client.Models.List(ctx)
	if err != nil {
		return nil, classify(err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (o *OpenAIRuntime) buildRequest(msg prompt.Message, params Params) (*openai.ChatCompletionNewParams, error) {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch p.Type {
		case prompt.PartImageURL:
			url, err := inlineImage(p.ImageURL)
			if err != nil {
				return nil, err
			}
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: url,
			}))
		case prompt.PartText:
			parts = append(parts, openai.TextContentPart(p.Text))
		default:
			return nil, fmt.Errorf("unsupported content part %q", p.Type)
		}
	}

	return &openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
		MaxCompletionTokens: openai.Int(int64(params.MaxTokens)),
		Temperature:         openai.Float(params.Temperature),
		TopP:                openai.Float(params.TopP),
	}, nil
}

// inlineImage turns a file:// reference into a data URL since a remote
// runtime cannot read our filesystem. Other URLs pass through.
func inlineImage(url string) (string, error) {
	path, ok := strings.CutPrefix(url, "file://")
	if !ok {
		return url, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}

// classify tags transport failures and gateway/overload statuses as
// ErrUnavailable.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return fmt.Errorf("OpenAI client error: %w", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return fmt.Errorf("OpenAI client error: %w", err)
}
