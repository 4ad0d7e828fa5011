package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MrWong99/elocution/internal/assess"
	"github.com/MrWong99/elocution/internal/config"
)

// batchOutput is one element of the array written for a batch input.
type batchOutput struct {
	Index      int    `json:"index"`
	Assessment any    `json:"assessment,omitempty"`
	Error      string `json:"error,omitempty"`
}

// runAssess scores a single request object, or an array of requests, read
// from the named file or stdin and writes the JSON result to stdout.
// Exit status is 1 when a single request is rejected or any I/O fails.
func runAssess(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("assess", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML configuration file (built-in defaults when empty)")
	pretty := fs.Bool("pretty", false, "indent the JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "elocution assess: at most one input file")
		return 2
	}

	slog.SetDefault(newLogger(stderr, slog.LevelWarn))

	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(stderr, "elocution assess: %v\n", err)
			return 1
		}
	}
	eng, err := config.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "elocution assess: %v\n", err)
		return 1
	}

	input, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "elocution assess: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}

	if trimmed := bytes.TrimSpace(input); len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []assess.Request
		if err := strictUnmarshal(trimmed, &reqs); err != nil {
			fmt.Fprintf(stderr, "elocution assess: decode requests: %v\n", err)
			return 1
		}
		results, err := eng.AssessBatch(ctx, reqs)
		if err != nil {
			fmt.Fprintf(stderr, "elocution assess: %v\n", err)
			return 1
		}
		out := make([]batchOutput, len(results))
		for i, r := range results {
			out[i] = batchOutput{Index: r.Index}
			if r.Err != nil {
				out[i].Error = r.Err.Error()
			} else {
				out[i].Assessment = r.Assessment
			}
		}
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(stderr, "elocution assess: write output: %v\n", err)
			return 1
		}
		return 0
	}

	var req assess.Request
	if err := strictUnmarshal(input, &req); err != nil {
		fmt.Fprintf(stderr, "elocution assess: decode request: %v\n", err)
		return 1
	}
	res, err := eng.Assess(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "elocution assess: %v\n", err)
		return 1
	}
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(stderr, "elocution assess: write output: %v\n", err)
		return 1
	}
	return 0
}

// readInput reads the named file, or stdin when name is empty or "-".
func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// strictUnmarshal decodes data into v, rejecting unknown fields and empty
// input.
func strictUnmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("empty input")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
