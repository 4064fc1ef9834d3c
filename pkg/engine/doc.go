// Package engine binds and invokes the external Sudoku solving engine.
//
// The solving engine is a collaborator: it computes the legal next moves or a
// full solution for a position and writes its XML answer into an output
// buffer it owns. This package owns the adapter side of that contract:
//
//   - Engine: the statically typed operations an engine driver must provide
//   - Bind: the one-time startup gate that resolves the engine and its buffer
//     capacity into an immutable Binding
//   - Client: per-call invocation with scoped buffer acquisition, payload
//     decoding and status-code mapping into an Outcome
//
// # Lifecycle
//
// A Binding is created once before serving begins and shared read-only by all
// request handlers:
//
//	binding := engine.Bind(ctx, builtin.New())
//	if !binding.Valid() {
//	    log.Error("engine binding failed", "error", binding.Err())
//	}
//	client := engine.NewClient(binding, engine.WithLogger(log))
//	out := client.Moves(ctx, "5 3 0 0 7 0 ...")
//
// Every invocation allocates one buffer sized to the bound capacity, calls the
// engine, reads the zero-terminated answer and frees the buffer on every exit
// path, including a panic raised by the engine driver.
//
// # Outcomes
//
// Outcome separates the two failure kinds: Err is set when the engine call
// could not be executed at all (unbound engine, allocation failure, transport
// error, driver panic), while a nonzero Status is a failure reported by the
// engine itself. Both carry a Diagnostic text from the fixed status table.
package engine
