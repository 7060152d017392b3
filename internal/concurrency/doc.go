// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Synchronization primitives shared by the free pool. The quiescence
// Barrier lets lock-free readers run without blocking while a writer waits
// for every reader already in flight before republishing memory.
package concurrency
