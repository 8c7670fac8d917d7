// Package scheduler provides the timer scheduling core of warpalarm.
// It keeps every pending Timer in one bounded Store ordered by expiry time
// and runs a single goroutine that sleeps until the earliest deadline, waking
// early whenever the Store changes.
//
// Durations are parsed from free text ("10m30s tea") by ParseSeconds, and the
// label comes from the same text by ParseLabel. Expired timers are handed to
// the callback given to New, one per loop iteration, in expiry order.
//
// Nothing is persisted. The Store is empty when a Scheduler is created and is
// dropped with it.
package scheduler
