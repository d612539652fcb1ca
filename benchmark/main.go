package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kdduha/llama-vision/backend/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const defaultPrompt = "Describe this image. What do you see?"

var rootCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Load benchmark for the vision inference API",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Send every scenario to /infer and print a markdown report",
	Long: `Send every scenario to /infer and print a markdown report.

Scenarios come from --scenarios (yaml or toml) or, when it is empty, from
every image found under --data.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	runCmd.Flags().String("endpoint", "http://localhost:5000/infer", "inference endpoint")
	runCmd.Flags().String("data", filepath.Join(".", "data"), "directory scanned for images")
	runCmd.Flags().String("scenarios", "", "scenario file (.yaml, .yml or .toml)")
	runCmd.Flags().String("prompt", defaultPrompt, "prompt for discovered images")
	runCmd.Flags().Int("concurrency", 1, "requests in flight")
	runCmd.Flags().Duration("timeout", 5*time.Minute, "per request timeout")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	endpoint, _ := cmd.Flags().GetString("endpoint")
	dataDir, _ := cmd.Flags().GetString("data")
	scenarioPath, _ := cmd.Flags().GetString("scenarios")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	var (
		scenarios []Scenario
		err       error
	)
	if scenarioPath != "" {
		scenarios, err = loadScenarios(scenarioPath)
	} else {
		scenarios, err = discoverScenarios(dataDir, prompt)
	}
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return errors.New("no scenarios to run")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: timeout}
	bar := progressbar.NewOptions(
		len(scenarios),
		progressbar.OptionSetDescription("Benchmarking"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)

	results := runAll(ctx, client, endpoint, scenarios, concurrency, func() { bar.Add(1) })
	bar.Finish()

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "ERR %s: %v\n", r.File, r.Err)
		}
	}

	printMarkdown(cmd.OutOrStdout(), results)
	return nil
}

// runAll keeps at most concurrency requests in flight. Results keep the
// scenario order.
func runAll(ctx context.Context, client *http.Client, endpoint string, scenarios []Scenario, concurrency int, done func()) []BenchResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]BenchResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, s := range scenarios {
		g.Go(func() error {
			results[i] = benchmarkScenario(ctx, client, endpoint, s)
			if done != nil {
				done()
			}
			return nil
		})
	}
	g.Wait()

	return results
}

func benchmarkScenario(ctx context.Context, client *http.Client, endpoint string, s Scenario) BenchResult {
	start := time.Now()

	fileRaw, err := os.ReadFile(s.Image)
	if err != nil {
		return BenchResult{File: s.Name, Format: formatOf(s.Image), Err: err}
	}

	prompt := s.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	req := models.InferenceRequest{
		Prompt:      prompt,
		Image:       base64.StdEncoding.EncodeToString(fileRaw),
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		TopP:        s.TopP,
	}

	resp, err := send(ctx, client, endpoint, req)
	res := BenchResult{
		File:     s.Name,
		Format:   formatOf(s.Image),
		Duration: time.Since(start),
		Err:      err,
		Size:     int64(len(fileRaw)),
	}
	if err == nil && resp.TokenUsage != nil {
		res.Tokens = resp.TokenUsage.CompletionTokens
	}
	return res
}

func send(ctx context.Context, client *http.Client, endpoint string, req models.InferenceRequest) (*models.VisionResponse, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal req: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		if sonic.Unmarshal(raw, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("bad status %d: %s (%s)", resp.StatusCode, e.Error, e.ErrorType)
		}
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out models.VisionResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
