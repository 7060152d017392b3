// Package reclaim
// Author: momentics <momentics@gmail.com>
//
// Periodic reclamation of free pool memory. A Task runs one cycle of the
// two-phase protocol as a state machine that can be stepped under a
// deadline; the Reclaimer drives tasks from a background goroutine on a
// timer, reading its policy from a control.ConfigStore.
package reclaim
