// Package main hosts the plenum CLI entrypoint and command graph.
//
// The Cobra-based command tree drives the session pipeline: discovery and
// full runs, single-stage execution, catalog inspection and maintenance,
// health checks, and configuration scaffolding. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
