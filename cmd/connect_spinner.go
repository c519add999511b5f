package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dialFinishedMsg struct {
	err error
}

// dialModel animates a spinner while a connect attempt runs and quits as soon
// as the attempt resolves either way. After a second it also shows how long
// the attempt has been going.
type dialModel struct {
	wheel   spinner.Model
	label   string
	started time.Time
	dial    tea.Cmd
	err     error
	done    bool
}

func (m dialModel) Init() tea.Cmd {
	return tea.Batch(m.wheel.Tick, m.dial)
}

func (m dialModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dialFinishedMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.wheel, cmd = m.wheel.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m dialModel) View() string {
	if m.done {
		return ""
	}

	elapsed := time.Since(m.started).Round(time.Second)
	if elapsed < time.Second {
		return fmt.Sprintf("%s %s", m.wheel.View(), m.label)
	}
	return fmt.Sprintf("%s %s (%s)", m.wheel.View(), m.label, elapsed)
}

func runConnectSpinner(ctx context.Context, output io.Writer, label string, connect func(context.Context) error) error {
	model := dialModel{
		wheel: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("39"))),
		),
		label:   label,
		started: time.Now(),
		dial: func() tea.Msg {
			return dialFinishedMsg{err: connect(ctx)}
		},
	}

	p := tea.NewProgram(model,
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}

	dialed, ok := final.(dialModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", final)
	}

	return dialed.err
}
