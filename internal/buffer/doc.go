// Package buffer holds a session's unconsumed output and matches patterns
// against it.
//
// The output pump appends decoded text; Expect waits for the leftmost match
// and consumes everything up to its end, keeping the consumed prefix as the
// discard. One mutex guards the buffer, the discard and the match flags, so
// searching and appending never overlap.
//
// Waiting is wake-on-append: every Append closes a notification channel that
// blocked matchers select on. A slow poll remains as a safety net.
package buffer
