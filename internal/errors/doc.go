// Package errors defines error types for expectr sessions.
//
// Each type covers one failure class of the expect engine: bad arguments,
// bad pattern types, match timeouts, missing or departed processes, and
// operations a transport cannot perform. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
