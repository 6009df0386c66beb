// Package tui provides a Bubble Tea terminal user interface for polarview-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/polarview-downloader/internal/config"
	"github.com/handiism/polarview-downloader/internal/download"
	"github.com/handiism/polarview-downloader/internal/model"
	"go.uber.org/zap"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	sceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    *zap.Logger
	logs      []LogEntry
	inputErr  error
	err       error
	now       func() time.Time

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference and its event stream. run numbers the
	// download attempts so messages of an abandoned one are ignored.
	manager *download.Manager
	events  chan tea.Msg
	run     int

	date    time.Time
	scenes  int
	current download.FileProgress
	report  *model.Report

	// Options
	manifest  bool
	quicklook bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil logger discards structured logs.
func NewModel(settings *config.Settings, logger *zap.Logger) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = model.Yesterday(time.Now()).Format(model.DateLayout)
	ti.SetValue(settings.TargetDate)
	ti.Focus()
	ti.CharLimit = len(model.DateLayout)
	ti.Width = 20

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logger:    logger,
		logs:      make([]LogEntry, 0),
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		manifest:  settings.CreateManifest,
		quicklook: settings.CreateQuicklook,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when the manager reports a message.
	ProgressMsg struct {
		Event download.ProgressEvent
		run   int
	}

	// FileProgressMsg is sent while a scene is being transferred.
	FileProgressMsg struct {
		Progress download.FileProgress
		run      int
	}

	// InitDoneMsg is sent when the metadata query completes.
	InitDoneMsg struct {
		Scenes int
		Err    error
		run    int
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Report *model.Report
		Err    error
		run    int
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}
			return m, nil

		case "enter":
			if m.state == StateInput {
				return m.start()
			}

		// Option toggles never reach the date input.
		case "m":
			if m.state == StateInput {
				m.manifest = !m.manifest
			}
			return m, nil

		case "k":
			if m.state == StateInput {
				m.quicklook = !m.quicklook
			}
			return m, nil

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.cancel()
				abandoned := m.events
				return m.reset(), tea.Batch(textinput.Blink, drain(abandoned))
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.run != m.run {
			break
		}
		cmds = append(cmds, listen(m.events))
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case FileProgressMsg:
		if msg.run != m.run {
			break
		}
		cmds = append(cmds, listen(m.events))
		m.current = msg.Progress
		if msg.Progress.Total > 0 {
			cmds = append(cmds, m.progress.SetPercent(float64(msg.Progress.Written)/float64(msg.Progress.Total)))
		}

	case InitDoneMsg:
		if msg.run != m.run || m.state != StateInitializing {
			break
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.scenes = msg.Scenes
		m.state = StateDownloading
		cmds = append(cmds, m.startDownload())

	case DownloadDoneMsg:
		if msg.run != m.run {
			break
		}
		m.report = msg.Report
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// start validates the date input and launches the metadata query.
func (m Model) start() (tea.Model, tea.Cmd) {
	date, err := model.ParseDate(m.textInput.Value(), m.now())
	if err != nil {
		m.inputErr = err
		return m, nil
	}
	m.inputErr = nil
	m.date = date
	m.logs = nil
	m.run++
	run := m.run

	settings := *m.settings
	settings.TargetDate = date.Format(model.DateLayout)
	settings.CreateManifest = m.manifest
	settings.CreateQuicklook = m.quicklook

	events := make(chan tea.Msg, 256)
	m.events = events
	send := sender(m.ctx, events)
	m.manager = download.NewManager(&settings,
		func(e download.ProgressEvent) { send(ProgressMsg{Event: e, run: run}) },
		download.WithLogger(m.logger),
		download.WithFileProgress(func(p download.FileProgress) {
			select {
			case events <- FileProgressMsg{Progress: p, run: run}:
			default:
			}
		}),
	)

	m.state = StateInitializing
	return m, tea.Batch(m.initialize(), listen(events), m.spinner.Tick)
}

func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.inputErr = nil
	m.scenes = 0
	m.current = download.FileProgress{}
	m.report = nil
	m.manager = nil
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
	return m
}

// sender delivers manager messages to the UI. Once ctx is done messages
// are dropped, so a cancelled run never blocks on a full stream.
func sender(ctx context.Context, events chan<- tea.Msg) func(tea.Msg) {
	return func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}
}

// drain discards what is left of an abandoned stream until it is closed.
func drain(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		for range events {
		}
		return nil
	}
}

// listen waits for the next manager event. It yields nothing once the
// stream is closed.
func listen(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// initialize runs the metadata query.
func (m Model) initialize() tea.Cmd {
	manager, events, ctx, run := m.manager, m.events, m.ctx, m.run
	return func() tea.Msg {
		err := manager.Initialize(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			close(events)
			return InitDoneMsg{Err: err, run: run}
		}
		return InitDoneMsg{Scenes: len(manager.Batch().Scenes), run: run}
	}
}

// startDownload starts the actual download in background.
func (m Model) startDownload() tea.Cmd {
	manager, events, ctx, run := m.manager, m.events, m.ctx, m.run
	return func() tea.Msg {
		if manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager"), run: run}
		}
		report, err := manager.StartDownloads(ctx)
		close(events)
		return DownloadDoneMsg{Report: report, Err: err, run: run}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("PolarView Sentinel-1 Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download one day of SAR scenes from polarview.aq"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Acquisition date (YYYY-MM-DD, empty for yesterday):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	if m.inputErr != nil {
		b.WriteString(errorStyle.Render(m.inputErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Write manifest (m)\n", checkbox(m.manifest)))
	b.WriteString(fmt.Sprintf("  %s Render quicklooks (k)\n", checkbox(m.quicklook)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Querying scenes for %s...", m.date.Format(model.DateLayout))))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("%d scene(s) for %s", m.scenes, m.date.Format(model.DateLayout))))
	b.WriteString("\n\n")

	if m.current.Scene != nil {
		b.WriteString(sceneStyle.Render(fmt.Sprintf("  %d/%d %s", m.current.Index+1, m.current.Count, m.current.Scene.FileName)))
		b.WriteString("\n")
	}

	b.WriteString(m.progress.View())
	b.WriteString("\n")

	var received int64
	var processed, total int32
	if m.manager != nil {
		received, processed, total = m.manager.GetProgress()
	}
	size := download.FormatBytes(m.current.Written)
	if m.current.Total > 0 {
		size += " / " + download.FormatBytes(m.current.Total)
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Scene: %s | Files: %d/%d | Received: %s",
		size, processed, total, download.FormatBytes(received),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	if m.report == nil || m.report.Batch == nil {
		b.WriteString(boxStyle.Render("Download Complete!"))
		return b.String()
	}

	r := m.report
	box := boxStyle.Render(fmt.Sprintf(
		"Download Complete!\n\n"+
			"Date: %s\n"+
			"Features: %d\n"+
			"Downloaded: %d\n"+
			"Skipped: %d\n"+
			"Failed: %d\n"+
			"Size: %s\n"+
			"Folder: %s",
		r.Batch.DateString(),
		r.Features,
		r.Count(model.StatusDownloaded),
		r.Count(model.StatusSkipped),
		r.Count(model.StatusFailed),
		download.FormatBytes(r.BytesReceived()),
		r.Batch.Folder,
	))
	b.WriteString(box)
	b.WriteString("\n\n")

	for _, res := range r.Failed() {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", res.Scene.FileName, res.Err)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • m: manifest • k: quicklook • v: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger *zap.Logger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
