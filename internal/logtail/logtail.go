package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one decoded zerolog line.
type Entry struct {
	Time      time.Time
	Level     zerolog.Level
	Component string
	Message   string
	Err       string
	Raw       string
}

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
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

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
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
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Parse decodes a JSON log line. Lines that are not JSON objects come back
// with only Raw set and ok false.
func Parse(line string) (Entry, bool) {
	e := Entry{Raw: line, Level: zerolog.NoLevel}

	var fields struct {
		Time      string `json:"time"`
		Level     string `json:"level"`
		Component string `json:"component"`
		Message   string `json:"message"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return e, false
	}
	if t, err := time.Parse(time.RFC3339, fields.Time); err == nil {
		e.Time = t
	}
	if lvl, err := zerolog.ParseLevel(fields.Level); err == nil {
		e.Level = lvl
	}
	e.Component = fields.Component
	e.Message = fields.Message
	e.Err = fields.Error
	return e, true
}

// Tail returns the last maxLines entries of the log at path, oldest first.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		e, _ := Parse(line)
		entries = append(entries, e)
	}
	return entries, nil
}
