package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type countMsg struct{ done, total int }

type finishMsg struct{}

// progressModel is a spinner plus a completion bar.
type progressModel struct {
	spinner  spinner.Model
	bar      progress.Model
	label    string
	done     int
	total    int
	finished bool
}

func newProgressModel(label string, total int) progressModel {
	return progressModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		label:   label,
		total:   total,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case countMsg:
		m.done, m.total = msg.done, msg.total
		return m, nil
	case finishMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m progressModel) View() string {
	if m.finished {
		return ""
	}
	return fmt.Sprintf("%s %s %s %d/%d\n",
		m.spinner.View(), m.label, m.bar.ViewAs(m.percent()), m.done, m.total)
}

// Progress reports batch completion. On a terminal it runs an animated
// bubbletea view; elsewhere it prints one line per update.
type Progress struct {
	out     io.Writer
	label   string
	program *tea.Program
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewProgress creates a progress reporter writing to out. It is interactive
// only when out is a terminal.
func NewProgress(out io.Writer, label string, total int) *Progress {
	p := &Progress{out: out, label: label}

	if f, ok := out.(*os.File); ok && IsTerminal(f) {
		p.program = tea.NewProgram(newProgressModel(label, total),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.program.Run()
		}()
	}
	return p
}

// Update records that done of total items are finished. It matches the
// runner's progress callback.
func (p *Progress) Update(done, total int) {
	if p.program != nil {
		p.program.Send(countMsg{done: done, total: total})
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %d/%d\n", p.label, done, total)
}

// Stop ends the display and waits for it to clear.
func (p *Progress) Stop() {
	if p.program == nil {
		return
	}
	p.program.Send(finishMsg{})
	p.wg.Wait()
}
