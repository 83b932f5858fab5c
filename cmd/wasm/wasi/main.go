//go:build wasip1

// Command goremap-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "program": "<remap source>", "event": <any JSON value> }
//	stdout: { "event": <transformed event>, "result": <any JSON value> }   on success
//	        { "error": "<message>", "diagnostics": ["..."] }              on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o goremap.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"program":".name = upcase(string!(.name))","event":{"name":"alice"}}' | wasmtime goremap.wasm
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/sandrolain/goremap"
	"github.com/sandrolain/goremap/pkg/diagnostic"
	"github.com/sandrolain/goremap/pkg/value"
)

type request struct {
	Program string          `json:"program"`
	Event   json.RawMessage `json:"event"`
}

type response struct {
	Event       json.RawMessage `json:"event,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func fail(err error) {
	r := response{Error: err.Error()}
	var diags diagnostic.List
	if errors.As(err, &diags) {
		for _, d := range diags {
			r.Diagnostics = append(r.Diagnostics, d.String())
		}
	}
	writeResponse(r, 1)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	var data value.Value = value.Object{}
	if len(req.Event) > 0 {
		v, err := value.ParseJSON(req.Event)
		if err != nil {
			fail(err)
		}
		data = v
	}

	event := value.NewEvent(data)
	result, err := goremap.Eval(context.Background(), req.Program, event)
	if err != nil {
		fail(err)
	}

	out, err := value.MarshalJSON(event.Value)
	if err != nil {
		fail(err)
	}
	res, err := value.MarshalJSON(result)
	if err != nil {
		fail(err)
	}
	writeResponse(response{Event: out, Result: res}, 0)
}
