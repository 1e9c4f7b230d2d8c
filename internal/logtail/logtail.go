package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Entry is one line of the sharemd log with its parsed level.
type Entry struct {
	Line  string
	Level slog.Level
}

// Read returns at most maxLines entries at or above min from the end of the
// log at path. A missing file yields no entries.
func Read(path string, maxLines int, min slog.Level) ([]Entry, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]Entry, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		level := LevelOf(line)
		if level < min {
			continue
		}
		ring[idx] = Entry{Line: line, Level: level}
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	entries := make([]Entry, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			entries[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(entries, ring[:count])
	}
	return entries, nil
}

// LevelOf extracts the level=... attribute written by slog's text handler.
// Lines without one count as info.
func LevelOf(line string) slog.Level {
	for _, field := range strings.Fields(line) {
		value, ok := strings.CutPrefix(field, "level=")
		if !ok {
			continue
		}
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err != nil {
			return slog.LevelInfo
		}
		return level
	}
	return slog.LevelInfo
}
