package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
	"github.com/kdduha/llama-vision/backend/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadScenarios(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "s.yaml")
	writeFile(t, yamlPath, `
scenarios:
  - name: cat
    image: img/cat.png
    prompt: What animal is this?
    max_tokens: 64
  - image: /abs/dog.jpg
`)
	tomlPath := filepath.Join(dir, "s.toml")
	writeFile(t, tomlPath, `
[[scenarios]]
name = "cat"
image = "img/cat.png"
prompt = "What animal is this?"
max_tokens = 64

[[scenarios]]
image = "/abs/dog.jpg"
`)

	maxTokens := 64
	want := []Scenario{
		{Name: "cat", Image: filepath.Join(dir, "img/cat.png"), Prompt: "What animal is this?", MaxTokens: &maxTokens},
		{Name: "dog.jpg", Image: "/abs/dog.jpg"},
	}

	for _, path := range []string{yamlPath, tomlPath} {
		got, err := loadScenarios(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestLoadScenarios_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "s.json"), `{}`)
	writeFile(t, filepath.Join(dir, "noimage.yaml"), "scenarios:\n  - name: x\n")

	for _, name := range []string{"s.json", "noimage.yaml", "missing.yaml"} {
		if _, err := loadScenarios(filepath.Join(dir, name)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDiscoverScenarios(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "png", "b.png"), "x")
	writeFile(t, filepath.Join(dir, "jpg", "a.JPG"), "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")

	got, err := discoverScenarios(dir, "p")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d scenarios: %+v", len(got), got)
	}
	if got[0].Name != "a.JPG" || formatOf(got[0].Image) != "jpg" || got[1].Prompt != "p" {
		t.Fatalf("scenarios = %+v", got)
	}
}

func TestRunAll(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var req models.InferenceRequest
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if req.Prompt == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success":false,"error":"Inference failed","error_type":"model"}`))
			return
		}
		w.Write([]byte(`{"success":true,"response_text":"ok","token_usage":{"prompt_tokens":3,"completion_tokens":7,"total_tokens":10},"metadata":{}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "png-bytes")
	writeFile(t, filepath.Join(dir, "b.png"), "png-bytes")
	writeFile(t, filepath.Join(dir, "c.webp"), "webp")

	scenarios := []Scenario{
		{Name: "a", Image: filepath.Join(dir, "a.png"), Prompt: "describe"},
		{Name: "b", Image: filepath.Join(dir, "b.png")},
		{Name: "c", Image: filepath.Join(dir, "c.webp"), Prompt: "fail"},
		{Name: "d", Image: filepath.Join(dir, "missing.png")},
	}

	var done atomic.Int32
	results := runAll(context.Background(), srv.Client(), srv.URL, scenarios, 2, func() { done.Add(1) })

	if done.Load() != 4 || hits.Load() != 3 {
		t.Fatalf("done = %d hits = %d", done.Load(), hits.Load())
	}
	if results[0].Err != nil || results[0].Tokens != 7 || results[0].Size != int64(len("png-bytes")) {
		t.Fatalf("result a = %+v", results[0])
	}
	if results[2].Err == nil || !strings.Contains(results[2].Err.Error(), "Inference failed") {
		t.Fatalf("result c = %+v", results[2])
	}
	if results[3].Err == nil {
		t.Fatalf("result d = %+v", results[3])
	}
}

func TestAggregateAndMarkdown(t *testing.T) {
	results := []BenchResult{
		{Format: "png", Duration: 2 * time.Second, Tokens: 10, Size: 2048},
		{Format: "png", Duration: 4 * time.Second, Tokens: 20, Size: 4096},
		{Format: "jpg", Err: errors.New("boom")},
	}

	agg := aggregate(results)
	want := map[string]Agg{
		"png": {Count: 2, Total: 6 * time.Second, TotalBytes: 6144, TotalTokens: 30},
		"jpg": {Failures: 1},
	}
	if diff := cmp.Diff(want, agg); diff != "" {
		t.Fatalf("aggregate mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	printMarkdown(&buf, results)
	out := buf.String()
	for _, line := range []string{
		"| jpg | 0 | 1 | - | - | - | - |",
		"| png | 2 | 0 | 3s | 6s | 15 | 3.00 KB |",
		"| **ALL** | 2 | 1 | 3s | 6s | 15 | 3.00 KB |",
	} {
		if !strings.Contains(out, line) {
			t.Fatalf("missing %q in:\n%s", line, out)
		}
	}
	if strings.Index(out, "| jpg") > strings.Index(out, "| png") {
		t.Fatal("formats are not sorted")
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		512:     "512 B",
		2048:    "2.00 KB",
		3 << 20: "3.00 MB",
		5 << 30: "5.00 GB",
	}
	for in, want := range cases {
		if got := humanBytes(in); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
