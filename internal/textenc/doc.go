// Package textenc turns raw log bytes into text without ever failing.
//
// Inspection machines write their history logs in whatever encoding the
// vendor firmware happens to use, so decoding tries an ordered list of
// candidate strategies and accepts the first one that decodes cleanly. A
// final lossy UTF-8 strategy substitutes invalid sequences instead of
// erroring, so callers always receive usable text.
package textenc
