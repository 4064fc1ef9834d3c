// Package server provides the sudokud HTTP adapter.
//
// A Server routes GET requests for the moves and solution endpoints to the
// bound engine, renders the engine's answer as HTML or XML, and exposes
// /healthz and, when enabled, Prometheus metrics. Every route sits behind the
// binding gate: if the engine failed to bind at startup, requests to the
// game endpoints are answered with 500 and "engine binding invalid.".
//
// Basic usage:
//
//	binding := engine.Bind(ctx, builtin.New())
//	srv := server.New(cfg, binding, server.WithLogger(log))
//	if err := srv.Start(); err != nil {
//		return err
//	}
//	defer srv.Stop(context.Background())
package server
