package report

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/followcheck/internal/application"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// composedMsg carries the finished report text back from the compose command.
type composedMsg string

type reportModel struct {
	report  application.Report
	preview int
	palette palette
	text    string
}

// Init composes the report off the update loop; Update only stores the text.
func (m reportModel) Init() tea.Cmd {
	report, preview, pal := m.report, m.preview, m.palette
	return func() tea.Msg {
		return composedMsg(compose(report, preview, pal))
	}
}

func (m reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if text, ok := msg.(composedMsg); ok {
		m.text = string(text)
		return m, tea.Quit
	}
	return m, nil
}

func (m reportModel) View() string {
	return m.text
}

// Render lays out a reconciliation report for a terminal.
func Render(report application.Report, opts RenderOptions) (string, error) {
	initial := reportModel{report: report, preview: opts.limit(), palette: newPalette()}

	final, err := tea.NewProgram(initial, tea.WithInput(nil), tea.WithOutput(io.Discard)).Run()
	if err != nil {
		return "", err
	}

	done, ok := final.(reportModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	return done.View(), nil
}
