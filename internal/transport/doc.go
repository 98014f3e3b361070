// Package transport implements the three backends a session can drive.
//
// PTYTransport spawns a program on a pseudoterminal. AdoptedTransport wraps
// handles to a process the caller already started. FuncTransport connects a
// producer and a consumer function, with no process at all.
//
// Every transport carries a Liveness record that flips to gone exactly once
// and supports bounded reads: Read waits at most the given duration and
// returns (0, nil) when nothing arrived.
package transport
