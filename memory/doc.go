// Package memory defines the provider-neutral transcript exchanged between the
// runner, model adapters, and tools.
//
// A transcript is created per task run and discarded afterwards. SaveTranscript
// exists for inspection only; a saved transcript is never fed back into a run.
package memory
