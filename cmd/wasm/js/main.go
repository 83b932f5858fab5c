//go:build js && wasm

// Command goremap-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `goremap` object with the following API:
//
//	goremap.version()                   → string
//	goremap.eval(program, eventJSON)    → { event, result }  (JSON strings, throws on error)
//	goremap.compile(program)            → { eval(eventJSON) → { event, result }, warnings: [...] }  (throws on error)
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o goremap.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	const out = goremap.eval('.name = upcase(string!(.name))', JSON.stringify({name: 'alice'}))
//	console.log(JSON.parse(out.event)) // { name: 'ALICE' }
package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/goremap"
	"github.com/sandrolain/goremap/pkg/compiler"
	"github.com/sandrolain/goremap/pkg/evaluator"
	"github.com/sandrolain/goremap/pkg/value"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	js.Global().Get("Error").New(msg)
	panic(msg)
}

func run(ev *evaluator.Evaluator, program *compiler.Program, eventJSON string, caller string) interface{} {
	data, err := value.ParseJSON([]byte(eventJSON))
	if err != nil {
		jsThrow(fmt.Sprintf("%s: invalid event JSON: %v", caller, err))
	}
	event := value.NewEvent(data)
	result, err := ev.Evaluate(context.Background(), program, event)
	if err != nil {
		jsThrow(fmt.Sprintf("%s: %v", caller, err))
	}

	outEvent, err := value.MarshalJSON(event.Value)
	if err != nil {
		jsThrow(fmt.Sprintf("%s: marshal event: %v", caller, err))
	}
	outResult, err := value.MarshalJSON(result)
	if err != nil {
		jsThrow(fmt.Sprintf("%s: marshal result: %v", caller, err))
	}
	return js.ValueOf(map[string]interface{}{
		"event":  string(outEvent),
		"result": string(outResult),
	})
}

func mustEvaluator() *evaluator.Evaluator {
	ev, err := evaluator.New()
	if err != nil {
		jsThrow(err.Error())
	}
	return ev
}

// jsEval implements goremap.eval(program, eventJSON).
func jsEval(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		jsThrow("goremap.eval requires 2 arguments: program (string) and event (JSON string)")
	}
	res, err := goremap.Compile(args[0].String(), nil)
	if err != nil {
		jsThrow(fmt.Sprintf("goremap.eval: %v", err))
	}
	return run(mustEvaluator(), res.Program, args[1].String(), "goremap.eval")
}

// jsCompile implements goremap.compile(program).
func jsCompile(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("goremap.compile requires 1 argument: program (string)")
	}
	res, err := goremap.Compile(args[0].String(), nil)
	if err != nil {
		jsThrow(fmt.Sprintf("goremap.compile: %v", err))
	}

	ev := mustEvaluator()
	evalFn := js.FuncOf(func(_ js.Value, innerArgs []js.Value) interface{} {
		if len(innerArgs) < 1 {
			jsThrow("compiled.eval requires 1 argument: event (JSON string)")
		}
		return run(ev, res.Program, innerArgs[0].String(), "compiled.eval")
	})

	warnings := make([]interface{}, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.String()
	}
	return js.ValueOf(map[string]interface{}{
		"eval":     evalFn,
		"warnings": warnings,
	})
}

func main() {
	api := map[string]interface{}{
		"eval":    js.FuncOf(jsEval),
		"compile": js.FuncOf(jsCompile),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return goremap.Version()
		}),
	}
	js.Global().Set("goremap", js.ValueOf(api))

	// Block forever; the JS event loop owns execution from here.
	select {}
}
