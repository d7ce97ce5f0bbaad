package viewer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/flytaly/mdtree/pkg/fswatcher"
	"github.com/flytaly/mdtree/pkg/log"
	"github.com/flytaly/mdtree/pkg/parser"
	"github.com/flytaly/mdtree/pkg/render"
)

const logTail = 8

type ProgramCfg struct {
	Path       string
	Interval   time.Duration
	LogPath    string
	Width      int
	NoColor    bool
	MaxNesting int
}

type model struct {
	cfg      ProgramCfg
	parser   *parser.Parser
	renderer *render.Terminal
	watcher  fswatcher.Watcher
	logger   log.Logger
	logChan  *log.ChanLog

	content  string
	parseErr string
	logs     []log.Record
	showLog  bool
	showTree bool
	quitting bool
}

// Init renders the document once and starts the file watcher.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		renderFile(m),
		startWatcher(m),
		waitForEvent(m.watcher),
		waitForError(m.watcher),
		waitForLogs(m.logChan.Records),
	)
}

func startWatcher(m model) tea.Cmd {
	return func() tea.Msg {
		go func() {
			if err := m.watcher.Start(m.cfg.Interval); err != nil {
				m.logger.Error("watcher: %s", err)
			}
		}()
		return nil
	}
}

// renderFile reads, parses and renders the document off the update loop.
func renderFile(m model) tea.Cmd {
	return func() tea.Msg {
		src, err := os.ReadFile(m.cfg.Path)
		if err != nil {
			return renderedMsg{err: err.Error()}
		}
		nodes, err := m.parser.Parse(src)
		if err != nil {
			return renderedMsg{err: err.Error()}
		}
		if m.showTree {
			return renderedMsg{content: render.NewTreeDump().Dump(nodes...)}
		}
		return renderedMsg{content: m.renderer.Render(nodes...)}
	}
}

// Update is called when messages are received. The idea is that you inspect
// the message and send back an updated model accordingly. You can also
// return a command, which is a function that performs I/O and returns a
// message.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			m.watcher.Close()
			m.logger.Close()
			return m, tea.Quit
		case key.Matches(msg, keys.Reload):
			return m, renderFile(m)
		case key.Matches(msg, keys.Tree):
			m.showTree = !m.showTree
			return m, renderFile(m)
		case key.Matches(msg, keys.Log):
			m.showLog = !m.showLog
			return m, nil
		}
	case renderedMsg:
		m.content = msg.content
		m.parseErr = msg.err
		if msg.err != "" {
			m.logger.Warning("parse: %s", msg.err)
		}
		return m, nil
	case fileEventMsg:
		m.logger.Info("%s %s", msg.Op, msg.Name)
		if msg.Op == fswatcher.Remove {
			m.parseErr = fmt.Sprintf("%s was removed", m.cfg.Path)
			return m, waitForEvent(m.watcher)
		}
		return m, tea.Batch(renderFile(m), waitForEvent(m.watcher))
	case watchErrMsg:
		m.logger.Error("watcher: %s", msg.error)
		return m, waitForError(m.watcher)
	case log.Record:
		m.logs = append(m.logs, msg)
		if len(m.logs) > logTail {
			m.logs = m.logs[len(m.logs)-logTail:]
		}
		return m, waitForLogs(m.logChan.Records)
	}
	return m, nil
}

// View returns a string based on data in the model. That string will be
// rendered to the terminal.
func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(header(m.cfg.Path, m.showTree))
	b.WriteString("\n\n")

	if m.parseErr != "" {
		b.WriteString(errorLine(m.parseErr))
		b.WriteString("\n")
	} else {
		b.WriteString(m.content)
	}

	if m.showLog {
		b.WriteString("\n")
		b.WriteString(printLogs(m.logs))
	}

	b.WriteString("\n")
	b.WriteString(helpLine(keys.ShortHelp()))
	return b.String()
}

// NewProgram creates the watch viewer program.
func NewProgram(cfg ProgramCfg) *tea.Program {
	if cfg.Interval == 0 {
		cfg.Interval = 500 * time.Millisecond
	}

	dir, base := filepath.Split(cfg.Path)
	if dir == "" {
		dir = "."
	}
	watcher := fswatcher.NewFilePoller(os.DirFS(dir))
	if err := watcher.Add(base); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	logChan := log.NewChanLog(64)
	var logger log.Logger = logChan
	if cfg.LogPath != "" {
		logger = log.New(cfg.LogPath)
	}

	return tea.NewProgram(model{
		cfg:      cfg,
		parser:   parser.New(parser.WithMaxNesting(cfg.MaxNesting)),
		renderer: newRenderer(cfg),
		watcher:  watcher,
		logger:   logger,
		logChan:  logChan,
	})
}

func newRenderer(cfg ProgramCfg) *render.Terminal {
	opts := []render.TerminalOption{render.WithWidth(cfg.Width)}
	if cfg.NoColor {
		opts = append(opts, render.WithoutColor())
	}
	return render.NewTerminal(opts...)
}
