// Package interact hands a session's process over to the real terminal.
//
// While interacting, keystrokes from the terminal are forwarded one byte at
// a time to the process, SIGINT and SIGTSTP are turned into the control bytes
// the process would have seen (0x03 and 0x1a), and SIGWINCH resizes the
// process's pseudoterminal. Terminal mode and signal registrations are
// acquired on entry and released exactly once on exit.
package interact
