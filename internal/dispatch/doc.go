// Package dispatch runs a batch of independent shell tasks, each in its own
// working directory under a shared work base, on a local worker pool or
// through a remote batch agent. It owns job transport and completion; it has
// no knowledge of what the tasks compute.
package dispatch
