// Package watcher delivers settled change notifications for the source
// log. The processing core only depends on the Notifier interface: some
// mechanism calls the handler serially after the watched path's content
// changes, with a settle delay so an in-progress write can finish. Two
// implementations exist: an fsnotify-backed watcher and a polling fallback
// for filesystems where change notifications are unreliable.
package watcher
