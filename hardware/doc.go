// Package hardware is the base package for the emulated machine. It and its
// sub-packages contain everything required for a headless emulation.
//
// The System type is the root of the emulation and contains references to all
// the sub-systems. The sub-systems are brought up in the order given by
// Stages() and are shut down in the reverse order.
//
// The sub-systems know nothing of sessions or goroutine roles, beyond the CPU
// package's use of the identity registry. Coordination of the sub-systems is
// the job of the session package.
package hardware
