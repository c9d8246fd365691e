// Package tui collects numeric run parameters interactively. Malformed
// input is reported inline and the same field is asked again; nothing that
// fails to parse or validate ever leaves the prompt.
package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/odelab/internal/dynamo"
)

var ErrCanceled = errors.New("prompt canceled")

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// Field is one value to ask for.
type Field struct {
	Name    string
	Label   string
	Default float64
	Integer bool
	// Check rejects parsed values that are out of range.
	Check func(v float64) error
}

// ParseNumber parses text as a finite float, or an integer when integer is
// set. Anything else is dynamo.ErrMalformedInput.
func ParseNumber(text string, integer bool) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty input", dynamo.ErrMalformedInput)
	}
	if integer {
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", dynamo.ErrMalformedInput, text)
		}
		return float64(n), nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", dynamo.ErrMalformedInput, text)
	}
	return v, nil
}

type Model struct {
	title    string
	fields   []Field
	values   map[string]float64
	cursor   int
	buf      string
	errMsg   string
	done     bool
	canceled bool
}

func NewPrompt(title string, fields []Field) Model {
	return Model{
		title:  title,
		fields: fields,
		values: make(map[string]float64, len(fields)),
		done:   len(fields) == 0,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.canceled = true
		m.done = true
		return m, tea.Quit
	case "enter":
		return m.submit()
	case "backspace":
		if len(m.buf) > 0 {
			r := []rune(m.buf)
			m.buf = string(r[:len(r)-1])
		}
	default:
		if key.Type == tea.KeyRunes || key.Type == tea.KeySpace {
			m.buf += string(key.Runes)
		}
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	f := m.fields[m.cursor]
	text := m.buf
	if strings.TrimSpace(text) == "" {
		text = strconv.FormatFloat(f.Default, 'g', -1, 64)
	}

	v, err := ParseNumber(text, f.Integer)
	if err == nil && f.Check != nil {
		err = f.Check(v)
	}
	if err != nil {
		m.errMsg = err.Error()
		m.buf = ""
		return m, nil
	}

	m.values[f.Name] = v
	m.errMsg = ""
	m.buf = ""
	m.cursor++
	if m.cursor == len(m.fields) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(cyan.Bold(true).Render(m.title))
	sb.WriteString("\n\n")

	for i, f := range m.fields {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		switch {
		case i < m.cursor:
			sb.WriteString(green.Render("✓ ") + dim.Render(label+": ") + white.Render(strconv.FormatFloat(m.values[f.Name], 'g', -1, 64)))
		case i == m.cursor && !m.done:
			sb.WriteString(magenta.Render("› ") + white.Render(label+": ") + m.buf + dim.Render("▏"))
			if m.buf == "" {
				sb.WriteString(dim.Render(fmt.Sprintf(" (%g)", f.Default)))
			}
		default:
			sb.WriteString(dim.Render("  " + label))
		}
		sb.WriteString("\n")
	}

	if m.errMsg != "" {
		sb.WriteString("\n" + red.Render(m.errMsg) + "\n")
	}
	sb.WriteString("\n" + dim.Render("enter accept · esc cancel"))
	return sb.String()
}

func (m Model) Done() bool     { return m.done }
func (m Model) Canceled() bool { return m.canceled }

// Values returns the accepted values by field name.
func (m Model) Values() map[string]float64 {
	out := make(map[string]float64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Run shows the prompt until every field is accepted or the user cancels.
func Run(title string, fields []Field, opts ...tea.ProgramOption) (map[string]float64, error) {
	final, err := tea.NewProgram(NewPrompt(title, fields), opts...).Run()
	if err != nil {
		return nil, err
	}
	m := final.(Model)
	if m.Canceled() {
		return nil, ErrCanceled
	}
	return m.Values(), nil
}
