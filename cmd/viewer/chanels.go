package viewer

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/flytaly/mdtree/pkg/fswatcher"
	"github.com/flytaly/mdtree/pkg/log"
)

type renderedMsg struct {
	content string
	err     string
}

type fileEventMsg fswatcher.Event

type watchErrMsg struct{ error }

func waitForEvent(w fswatcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		return fileEventMsg(<-w.Events())
	}
}

func waitForError(w fswatcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		return watchErrMsg{<-w.Errors()}
	}
}

func waitForLogs(logChan chan log.Record) tea.Cmd {
	return func() tea.Msg {
		return log.Record(<-logChan)
	}
}
