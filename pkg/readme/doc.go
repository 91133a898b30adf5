// Package readme extracts the long-form description of a distribution from
// its README document.
//
// # Document Shape
//
// The README is expected to follow a loose convention:
//
//	Title line(s)                 <- header, skipped
//	                              <- first blank line ends the header
//	Body paragraph one ...        <- collected
//	Body paragraph two ...        <- collected
//	.. contents::                 <- marker, dropped; reading stops here
//	Table of contents, API docs   <- ignored
//
// [Extract] returns the body lines verbatim, line terminators included.
//
// # Degrading Silently
//
// A README that does not follow the convention never aborts a build:
//
//   - No blank line at all: the result is empty.
//   - No marker line: everything after the first blank line is returned.
//
// The only errors surfaced are I/O errors. [ExtractFile] reports a missing
// or unreadable document as a coded error so descriptor construction halts.
package readme
