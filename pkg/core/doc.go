// Package core holds the types shared by the adapters, the agent and the
// answer formatter.
//
// The rule: pkg/core imports ONLY the standard library.
// Everything else depends on core, not the reverse.
package core
