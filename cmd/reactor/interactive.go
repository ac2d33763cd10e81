package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wippyai/reactor/binder"
	"github.com/wippyai/reactor/errors"
)

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive terminal UI over the backend operations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			b, err := openBackend(a.cfg)
			if err != nil {
				return err
			}
			m := newInteractiveModel(b, a.binderOptions()...)
			defer m.close()

			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type loadedMsg struct {
	err error
	ops []operation
}

// stateMsg carries one binder transition into the program.
type stateMsg struct {
	name  string
	state binder.State[string]
}

type interactiveModel struct {
	err      error
	backend  *backend
	binders  map[string]*binder.Binder[[]string, string]
	states   map[string]binder.State[string]
	events   chan stateMsg
	notice   string
	opts     []binder.Option
	unsubs   []func()
	ops      []operation
	inputs   []textinput.Model
	spinner  spinner.Model
	selected int
	focusIdx int
	state    modelState
}

func newInteractiveModel(b *backend, opts ...binder.Option) *interactiveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = pendingStyle

	return &interactiveModel{
		backend: b,
		opts:    opts,
		binders: make(map[string]*binder.Binder[[]string, string]),
		states:  make(map[string]binder.State[string]),
		events:  make(chan stateMsg, 256),
		spinner: s,
		state:   stateSelectFunc,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.load, m.waitForState, m.spinner.Tick)
}

func (m *interactiveModel) load() tea.Msg {
	if err := m.backend.Initialize(context.Background()); err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{ops: m.backend.operations()}
}

func (m *interactiveModel) waitForState() tea.Msg {
	return <-m.events
}

// binderFor returns the binder for name, creating it on first use. The
// observer only queues: it may run inside Update, which must not block on
// the program.
func (m *interactiveModel) binderFor(name string) *binder.Binder[[]string, string] {
	if b, ok := m.binders[name]; ok {
		return b
	}
	b := binder.New(m.backend, textMethod(name), m.opts...)
	m.unsubs = append(m.unsubs, b.Subscribe(func(st binder.State[string]) {
		m.events <- stateMsg{name: name, state: st}
	}))
	m.binders[name] = b
	return b
}

func (m *interactiveModel) close() {
	for _, unsubscribe := range m.unsubs {
		unsubscribe()
	}
	for _, b := range m.binders {
		b.Close()
	}
	_ = m.backend.Close(context.Background())
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.ops)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.ops) == 0 {
					break
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					m.invoke()
					return m, nil
				}
				m.state = stateInputArgs
				return m, textinput.Blink

			case stateInputArgs:
				m.invoke()
				return m, nil

			case stateShowResult:
				m.state = stateSelectFunc
				m.notice = ""
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.notice = ""
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ops = msg.ops

	case stateMsg:
		m.states[msg.name] = msg.state
		return m, m.waitForState

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	op := m.ops[m.selected]
	m.inputs = make([]textinput.Model, len(op.Params))
	for i, p := range op.Params {
		name, typ, _ := strings.Cut(p, ": ")
		ti := textinput.New()
		ti.Placeholder = typ
		ti.Prompt = name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// invoke triggers the selected operation. Transitions arrive as stateMsg.
func (m *interactiveModel) invoke() {
	op := m.ops[m.selected]
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = input.Value()
	}

	m.notice = ""
	err := m.binderFor(op.Name).Invoke(context.Background(), args)
	switch {
	case stderrors.Is(err, errors.ErrRejectedWhilePending):
		m.notice = op.Name + " is still pending; invocation ignored"
	case err != nil:
		m.notice = err.Error()
	}
	m.state = stateShowResult
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.ops) == 0 {
		return m.spinner.View() + " Loading backend..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Reactor"))
	b.WriteString(" ")
	b.WriteString(m.backend.label)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select an operation to call:\n\n")
		for i, op := range m.ops {
			line := "  " + m.formatOp(op)
			if i == m.selected {
				line = selectedStyle.Render("> "+op.Name) + " " + typeStyle.Render(op.Signature)
			}
			b.WriteString(line)
			if badge := m.badge(op.Name); badge != "" {
				b.WriteString("  ")
				b.WriteString(badge)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(op.Name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(op.Name)))
		st := m.states[op.Name]
		switch st.Status {
		case binder.StatusPending:
			b.WriteString(m.spinner.View() + pendingStyle.Render(" pending"))
			if st.HasResult {
				b.WriteString(helpStyle.Render(" (last: " + st.Result + ")"))
			}
		case binder.StatusSucceeded:
			b.WriteString(resultStyle.Render(st.Result))
		case binder.StatusFailed:
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", st.Err)))
		default:
			b.WriteString(helpStyle.Render("idle"))
		}
		if m.notice != "" {
			b.WriteString("\n")
			b.WriteString(pendingStyle.Render(m.notice))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatOp(op operation) string {
	return funcStyle.Render(op.Name) + " " + typeStyle.Render(op.Signature)
}

func (m *interactiveModel) badge(name string) string {
	st, ok := m.states[name]
	if !ok {
		return ""
	}
	switch st.Status {
	case binder.StatusPending:
		return m.spinner.View()
	case binder.StatusSucceeded:
		return resultStyle.Render("= " + st.Result)
	case binder.StatusFailed:
		return errorStyle.Render("failed")
	}
	return ""
}
