/*
Package sched is the cooperative discrete-event kernel the harness runs on.

Clock edges and timers are events on an akita serial engine. Every event is
followed by a delta-cycle loop: runnable tasks are resumed one at a time until
each suspends again, then pending signal writes are committed and the events
they trigger wake the next set of tasks. Nothing runs in parallel; a Task is a
goroutine that only executes while the kernel has handed it the baton.

Suspension points are Task.Wait*, Mutex.Lock and nothing else.
*/
package sched
