// Package processor implements the log processing pass: snapshot the
// source log, decode it, extract PCB identifiers, merge them into the
// durable identifier set, and refresh the count artifact.
//
// Every sub-step is isolated. A failing copy, decode, diagnostic write, or
// store write is logged and the pass continues with whatever independent
// steps remain; Process never returns an error to the trigger loop. The
// count artifact is rewritten on every pass, including the early-return
// paths, so it always reflects the set as of the last completed pass.
package processor
