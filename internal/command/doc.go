// Package command turns spawn command strings into runnable commands.
//
// A command string without shell metacharacters is split on whitespace and
// its program located on PATH (falling back to common system directories).
// Anything else runs through the configured shell with -c. The resulting
// environment always carries a TERM value so terminal-aware programs behave.
package command
