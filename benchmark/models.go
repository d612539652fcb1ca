package main

import "time"

// Scenario is one request sent by the benchmark. Image is a file path,
// relative paths are resolved against the scenario file.
type Scenario struct {
	Name        string   `yaml:"name" toml:"name"`
	Image       string   `yaml:"image" toml:"image"`
	Prompt      string   `yaml:"prompt" toml:"prompt"`
	MaxTokens   *int     `yaml:"max_tokens,omitempty" toml:"max_tokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty" toml:"temperature,omitempty"`
	TopP        *float64 `yaml:"top_p,omitempty" toml:"top_p,omitempty"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios" toml:"scenarios"`
}

type BenchResult struct {
	File     string
	Format   string
	Duration time.Duration
	Tokens   int
	Err      error
	Size     int64
}

type Agg struct {
	Count       int
	Failures    int
	Total       time.Duration
	TotalBytes  int64
	TotalTokens int
}
