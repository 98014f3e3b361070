// Package session implements an expect session.
//
// A Session owns one transport and runs two background tasks in an errgroup
// for its whole lifetime: the output pump, which fills the buffer, and the
// supervisor, which flips liveness when the process ends. A third task, the
// keyboard forwarder, runs only while interacting.
//
// Transport failures never surface directly. They turn liveness to gone and
// the next operation that needs a live process (Send, Kill, Interact) fails
// with a ProcessError.
package session
