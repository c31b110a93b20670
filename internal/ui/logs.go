package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/potluck/internal/logtail"
)

const logTailLines = 200

type logTailMsg struct {
	entries []logtail.Entry
	err     error
}

func logTailCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Tail(path, logTailLines)
		return logTailMsg{entries: entries, err: err}
	}
}

// renderLogs renders the newest log entries that fit below the bars.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	height := m.listHeight() + 1

	var b strings.Builder
	b.WriteString(styles.MutedText.Bold(true).Render("ACTIVITY  " + truncate(m.logPath, max(10, m.width-12))))
	switch {
	case m.logErr != nil:
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(m.logErr.Error()))
		return b.String()
	case len(m.logEntries) == 0:
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("No log entries yet."))
		return b.String()
	}

	entries := m.logEntries
	if len(entries) > height {
		entries = entries[len(entries)-height:]
	}
	for _, e := range entries {
		b.WriteString("\n")
		b.WriteString(m.renderLogEntry(e))
	}
	return b.String()
}

func (m Model) renderLogEntry(e logtail.Entry) string {
	styles := m.theme.Styles()
	if e.Message == "" && e.Level == zerolog.NoLevel {
		return styles.FaintText.Render(truncate(e.Raw, m.width))
	}

	levelStyle := styles.MutedText
	switch e.Level {
	case zerolog.WarnLevel:
		levelStyle = styles.WarningText
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		levelStyle = styles.DangerText
	case zerolog.InfoLevel:
		levelStyle = styles.AccentText
	}

	ts := "        "
	if !e.Time.IsZero() {
		ts = e.Time.Local().Format("15:04:05")
	}
	line := fmt.Sprintf("%s %s %s", ts, padRight(strings.ToUpper(e.Level.String()), 5), padRight(e.Component, 10))
	msg := e.Message
	if e.Err != "" {
		msg += ": " + e.Err
	}
	return styles.FaintText.Render(line) + " " + levelStyle.Render(truncate(msg, max(0, m.width-len(line)-1)))
}
