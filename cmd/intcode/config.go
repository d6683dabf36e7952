package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/colorfulnotion/intcode/cluster"
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/trace"
)

type CommandConfig struct {
	LogLevel    string   `json:"loglevel"`
	Debug       string   `json:"debug"`
	Trace       string   `json:"trace"`
	TraceIDs    []string `json:"traceids"`
	MemoryLimit int64    `json:"memorylimit"`
	Input       []int64  `json:"input"`
	Color       bool     `json:"color"`
}

// String method returns the CommandConfig as a formatted JSON string
func (c *CommandConfig) String() string {
	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling JSON: %v", err)
	}
	return string(jsonData)
}

func loadProgram(path string) ([]intcode.Word, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	image, err := intcode.Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return image, nil
}

func noClose() error { return nil }

// openTrace opens the configured trace sink; "-" writes to stderr so the trace
// never mixes with program output. The writer is nil when tracing is off.
func (c *CommandConfig) openTrace(stderr io.Writer) (*trace.JSONLTraceWriter, error) {
	var tw *trace.JSONLTraceWriter
	switch c.Trace {
	case "":
		return nil, nil
	case "-":
		tw = trace.NewJSONLTraceWriter(stderr)
	default:
		var err error
		if tw, err = trace.NewJSONLTraceWriterFile(c.Trace); err != nil {
			return nil, err
		}
	}
	tw.SetIdentifiers(c.TraceIDs...)
	return tw, nil
}

// newMachine boots a VM from image with the configured inputs, memory limit and
// tracer. The returned close func flushes the trace.
func (c *CommandConfig) newMachine(image []intcode.Word, stderr io.Writer) (*intcode.VM, func() error, error) {
	vm := intcode.NewFromImage(image, c.Input...)
	vm.SetMemoryLimit(c.MemoryLimit)
	tw, err := c.openTrace(stderr)
	if err != nil {
		return nil, nil, err
	}
	if tw == nil {
		return vm, noClose, nil
	}
	vm.SetTracer(tw)
	return vm, tw.Close, nil
}

// clusterOptions carries the memory limit and tracer to every machine a
// scheduler boots.
func (c *CommandConfig) clusterOptions(stderr io.Writer) ([]cluster.Option, func() error, error) {
	opts := []cluster.Option{cluster.WithMemoryLimit(c.MemoryLimit)}
	tw, err := c.openTrace(stderr)
	if err != nil {
		return nil, nil, err
	}
	if tw == nil {
		return opts, noClose, nil
	}
	return append(opts, cluster.WithTracer(tw)), tw.Close, nil
}
