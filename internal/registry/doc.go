// Package registry implements the shared, mutex-guarded collection of live
// alarms. It keeps alarms ordered by expiry for scheduling, enforces unique
// ids, and hands the earliest due alarm to the expiry worker atomically.
//
// Every operation runs under a single exclusive critical section covering
// inspection and mutation together. Alarm volume is small (hundreds, not
// millions), so ordered insertion with a linear scan is deliberate.
package registry
