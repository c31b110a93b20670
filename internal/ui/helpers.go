package ui

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/potluck/internal/reconcile"
)

func colorOf(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// padRight truncates s to width runes and pads it with spaces.
func padRight(s string, width int) string {
	s = truncate(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// classifyConnectionError returns a short description of a store error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "status 401"), strings.Contains(msg, "status 403"):
		return "UNAUTHORIZED"
	default:
		return "ERROR"
	}
}

// describeError turns an engine error into a one-line status message.
func describeError(err error) string {
	var (
		invalid *reconcile.ValidationError
		write   *reconcile.RemoteWriteError
		read    *reconcile.RemoteReadError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		return "Invalid: " + invalid.Err.Error()
	case errors.As(err, &write):
		return fmt.Sprintf("Could not %s guest (%s); change undone", write.Kind, classifyConnectionError(write.Err))
	case errors.As(err, &read):
		return fmt.Sprintf("Refresh failed (%s); showing cached guests", classifyConnectionError(read.Err))
	case errors.Is(err, reconcile.ErrClosed):
		return "Sync stopped"
	default:
		return err.Error()
	}
}

func mutationStatus(msg mutationDoneMsg) (string, bool) {
	if msg.err != nil {
		return describeError(msg.err), true
	}
	switch msg.kind {
	case reconcile.KindCreate:
		return "Added " + msg.name, false
	case reconcile.KindRemove:
		return "Removed " + msg.name, false
	default:
		return "Saved " + msg.name, false
	}
}
