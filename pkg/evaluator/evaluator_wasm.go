//go:build (js && wasm) || wasip1

package evaluator

// init sets WebAssembly-specific defaults for all Evaluators created in this
// process.
//
// On js/wasm the JavaScript runtime is single-threaded and goroutines are
// multiplexed cooperatively on one OS thread, so batches gain nothing from
// running events side by side. wasip1 has no thread support in the Go
// runtime either. Batches therefore evaluate one event at a time.
func init() {
	defaultConcurrency = 1
}
