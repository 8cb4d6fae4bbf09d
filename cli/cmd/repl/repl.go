package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/interp/lang"
	"github.com/ardnew/interp/log"
)

// Env is the evaluation environment of a session.
type Env struct {
	Vars      lang.Vars
	Constants lang.Constants
	Options   []lang.Option
}

// constants returns the constant names offered for completion.
func (e Env) constants() lang.Constants {
	if e.Constants.Len() == 0 {
		return lang.DefaultConstants()
	}

	return e.Constants
}

// editTemplateMsg is sent when a template edit completes.
type editTemplateMsg struct{ template, output string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after an error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters an error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help             Print this help
  vars             List variables
  tokens <expr>    Print the token stream of an expression
  ast <expr>       Print the parse tree of an expression
  render <text>    Interpolate the ${...} placeholders of text
  edit             Edit and render a template in $EDITOR
  clear            Clear screen
  quit             Exit REPL

Usage:
  Type an expression to evaluate it, such as page.title or [1, 2][0]
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	env          Env
	logger       log.Logger
	history      *History
	historyIdx   int
	template     string        // last template rendered with edit
	matches      fuzzy.Matches // current fuzzy match results
	owner        any           // value the candidates are members of
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts an interactive session evaluating expressions in env. Entered
// lines are saved to the history file at historyPath, if it is not empty.
func Run(
	ctx context.Context,
	env Env,
	historyPath string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", historyPath),
		slog.Int("history_count", history.Len()),
		slog.Int("var_count", len(env.Vars)),
	)

	p := tea.NewProgram(newModel(ctx, env, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	env Env,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		env:        env,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
		suggIdx:    -1,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editTemplateMsg:
		m.template = msg.template

		return m, tea.Println(resultStyle.Render(msg.output))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit discarded"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch input := m.input.Value(); {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type an expression or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(
			m.matches, m.owner, m.suggIdx, m.tabActive, m.width,
		))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyMove(-1, false), nil

	case tea.KeyDown:
		return m.historyMove(1, false), nil

	case tea.KeyShiftUp:
		return m.historyMove(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyMove(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.Type == tea.KeySpace {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key edits or moves without auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the selected candidate by step, starting tab-cycling if it is
// not active. A single candidate is completed immediately.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with
// replacement and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the matches for the current input. With
// autoConfirm, a word that already equals the sole candidate is confirmed.
// Deletions and cursor movement pass false so that editing never completes
// unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.owner, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if candidate := m.matches[0].Str; m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err),
		)
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	out, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// evaluate compiles and evaluates an expression and formats its value.
func (m model) evaluate(input string) (string, error) {
	ctx := m.ctxFunc()

	x, err := lang.Compile(ctx, input, m.env.Options...)
	if err != nil {
		return "", err
	}

	v, err := x.Evaluate(ctx, m.env.Vars, m.env.Options...)
	if err != nil {
		return "", err
	}

	m.logger.TraceContext(ctx, "repl eval",
		slog.String("input", input),
		slog.String("type", fmt.Sprintf("%T", v)),
	)

	return lang.Format(v), nil
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("arg", arg),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())
	}

	out, err := m.command(name, arg)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// command runs a control command that prints text.
func (m model) command(name, arg string) (string, error) {
	ctx := m.ctxFunc()

	switch name {
	case "h", "help":
		return helpMessage(), nil

	case "v", "vars":
		var b strings.Builder

		for _, name := range sortedVars(m.env.Vars) {
			fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(m.env.Vars[name])))
		}

		return strings.TrimSuffix(b.String(), "\n"), nil

	case "t", "tokens":
		s, err := lang.Tokenize(ctx, arg)
		if err != nil {
			return "", err
		}

		var buf bytes.Buffer
		if err := lang.FormatTokens(&buf, s); err != nil {
			return "", err
		}

		return strings.TrimSuffix(buf.String(), "\n"), nil

	case "a", "ast":
		x, err := lang.Compile(ctx, arg, m.env.Options...)
		if err != nil {
			return "", err
		}

		var buf bytes.Buffer
		if err := lang.Print(&buf, x.Root(), 1); err != nil {
			return "", err
		}

		return strings.TrimSuffix(buf.String(), "\n"), nil

	case "r", "render":
		return lang.Interpolate(ctx, arg, m.env.Vars, m.env.Options...)

	default:
		return "", fmt.Errorf("unknown command: %s (try 'help')", name)
	}
}

// historyMove steps through history by delta. With inMode, entries of the
// other mode are skipped; otherwise the mode follows the entry. Moving past
// the newest entry clears the input.
func (m model) historyMove(delta int, inMode bool) model {
	for i := m.historyIdx + delta; i >= 0 && i < m.history.Len(); i += delta {
		entry, err := m.history.Entry(i)
		if err != nil || (inMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if delta > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, saving the input of the current mode and
// restoring that of the other.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	m.tabActive = false

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
