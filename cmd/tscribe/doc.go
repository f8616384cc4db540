// Package main hosts the tscribe CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into workspace
// operations against the transcript backend: listing and deleting projects,
// managing prompt templates and API keys, submitting videos for processing,
// downloading results, and editing form drafts that persist between runs.
// Configuration resolution, logging, tracing, and cache lifecycle are wired
// once per invocation in the command context so subcommands only describe
// what to call and how to print it.
package main
