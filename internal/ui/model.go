// Package ui provides short-lived notices rendered under the player view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/scrubdeck/scrubdeck/style"
)

// NoticeTTL is how long a notice stays visible.
const NoticeTTL = 3 * time.Second

// Model holds the notice currently on screen.
type Model struct {
	notice     string
	notifiedAt time.Time
	now        func() time.Time
}

// NoticeMsg shows its text until NoticeTTL elapses.
type NoticeMsg string

// ClearNoticeMsg hides the notice if it is older than NoticeTTL.
type ClearNoticeMsg struct{}

// Notify returns a command delivering text as a notice.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg(text)
	}
}

func clearLater() tea.Cmd {
	return tea.Tick(NoticeTTL, func(time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

func (m *Model) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

// Notice returns the visible notice, if any.
func (m *Model) Notice() string {
	return m.notice
}

// Update handles notice messages and ignores the rest.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NoticeMsg:
		m.notice = string(msg)
		m.notifiedAt = m.clock()
		return clearLater()
	case ClearNoticeMsg:
		// a newer notice restarted the timer
		if m.clock().Sub(m.notifiedAt) >= NoticeTTL {
			m.notice = ""
		}
	}
	return nil
}

// View appends the notice to the last line of content.
func (m *Model) View(content string) string {
	if m.notice == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notice)
	return strings.Join(lines, "\n")
}
