package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read(missing) = %v, %v, want nil, nil", lines, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		level     string
		message   string
		component string
		attrs     []string
		summary   string
	}{
		{
			name:    "plain text",
			input:   "panic: something broke",
			summary: "panic: something broke",
		},
		{
			name:    "broken json",
			input:   `{"level":`,
			summary: `{"level":`,
		},
		{
			name:      "poller entry",
			input:     `{"time":"2026-01-02T15:04:05.123Z","level":"DEBUG","msg":"chats poll failed","component":"poller","session":"default","error":"timeout"}`,
			level:     "DEBUG",
			message:   "chats poll failed",
			component: "poller",
			attrs:     []string{"error=timeout", "session=default"},
			summary:   "[poller] chats poll failed error=timeout session=default",
		},
		{
			name:    "numeric attr",
			input:   `{"time":"2026-01-02T15:04:05Z","level":"INFO","msg":"loaded chats","count":12}`,
			level:   "INFO",
			message: "loaded chats",
			attrs:   []string{"count=12"},
			summary: "loaded chats count=12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Parse(tt.input)
			if e.Level != tt.level || e.Message != tt.message || e.Component != tt.component {
				t.Fatalf("Parse() = %+v", e)
			}
			if !reflect.DeepEqual(e.Attrs, tt.attrs) {
				t.Fatalf("Attrs = %v, want %v", e.Attrs, tt.attrs)
			}
			if got := e.Summary(); got != tt.summary {
				t.Fatalf("Summary() = %q, want %q", got, tt.summary)
			}
		})
	}
}

func TestParse_Time(t *testing.T) {
	e := Parse(`{"time":"2026-01-02T15:04:05.5Z","level":"INFO","msg":"x"}`)
	want := time.Date(2026, 1, 2, 15, 4, 5, 500_000_000, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if !e.Structured() {
		t.Fatalf("Structured() = false, want true")
	}
}
