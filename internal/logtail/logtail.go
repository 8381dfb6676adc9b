package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines
// and no error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one record of parley's JSON log.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	// Attrs holds the remaining attributes as sorted key=value pairs.
	Attrs []string
	// Raw is the original line, kept for lines that are not JSON.
	Raw string
}

// Parse decodes a line written by slog's JSON handler. Lines that are not
// JSON objects come back with only Raw set.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return entry
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return entry
	}

	if v, ok := fields["time"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			entry.Time = ts
		}
	}
	entry.Level, _ = fields["level"].(string)
	entry.Message, _ = fields["msg"].(string)
	entry.Component, _ = fields["component"].(string)

	for key, value := range fields {
		switch key {
		case "time", "level", "msg", "component":
			continue
		}
		entry.Attrs = append(entry.Attrs, fmt.Sprintf("%s=%v", key, value))
	}
	slices.Sort(entry.Attrs)
	return entry
}

// Structured reports whether the entry was decoded from JSON.
func (e Entry) Structured() bool {
	return e.Level != "" || e.Message != ""
}

// Summary renders the entry on one line without its timestamp or level.
func (e Entry) Summary() string {
	if !e.Structured() {
		return e.Raw
	}
	var b strings.Builder
	if e.Component != "" {
		b.WriteString("[")
		b.WriteString(e.Component)
		b.WriteString("] ")
	}
	b.WriteString(e.Message)
	for _, attr := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(attr)
	}
	return b.String()
}
