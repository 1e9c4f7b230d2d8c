// Package logtail reads the tail of sharemd's log file.
//
// Read keeps a ring buffer of maxLines entries, so memory stays bounded no
// matter how large the log has grown. Lines below the requested level are
// skipped before they enter the ring, so "the last 20 warnings" means exactly
// that and not "the warnings among the last 20 lines".
//
// Levels come from the level=... attribute that slog's text handler writes;
// LevelOf also understands offsets such as WARN+2.
package logtail
