// Package tasks implements the per-upload orchestration pipeline.
//
// The core abstraction is [UploadEngine], which drives one upload from
// intake through parsing, destination uploads, and archival. Operations
// emit progress updates via channels for non-blocking status reporting to
// CLI/UI layers; durable progress goes to the status store.
//
// One engine run owns one upload id. Runs for different ids are fully
// independent and never share mutable state; within a run every step,
// including each destination upload, executes strictly sequentially so the
// status detail map and log ordering stay deterministic.
//
// The state machine is one-directional: intake → parsing → uploading →
// archiving → completed, with error reachable from any non-terminal state.
// The terminal status is written before archiving begins, so a consumer
// observing "completed" is guaranteed the destination results are final.
package tasks
