// Package logtail reads the end of the potluck log file for the in-app
// activity view.
//
// Read keeps a ring buffer of maxLines while scanning, so memory stays
// bounded however large the file grows. Tail decodes each line as a zerolog
// JSON entry; anything else is kept verbatim in Entry.Raw.
package logtail
