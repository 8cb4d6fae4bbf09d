package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/interp/lang"
	"github.com/ardnew/interp/log"
)

const defaultEditor = "vi"

// editTemplateCommand implements [tea.ExecCommand] for the edit-render-retry
// loop. It writes the template to a temp file, opens the user's editor and
// renders the result. If rendering fails the user is prompted to re-edit.
type editTemplateCommand struct {
	env      Env
	template string
	output   string
	ctxFunc  func() context.Context
	logger   log.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editTemplateCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editTemplateCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editTemplateCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-render-retry loop. An emptied file cancels the edit
// and leaves template unchanged. If the user declines to re-edit after an
// error, it returns [ErrEditDeclined].
func (c *editTemplateCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "interp-repl-*.txt")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	content := c.template

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if len(data) == 0 {
			return nil
		}

		content = string(data)

		out, renderErr := lang.Interpolate(ctx, content, c.env.Vars, c.env.Options...)

		c.logger.TraceContext(ctx, "editor render attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", renderErr == nil),
		)

		if renderErr == nil {
			c.template = content
			c.output = strings.TrimSuffix(out, "\n")

			return nil
		}

		fmt.Fprintf(c.stderr, "\nRender error: %s\n", renderErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

// edit returns the command that runs the template editor and reports its
// outcome to the model.
func (m model) edit() tea.Cmd {
	cmd := &editTemplateCommand{
		env:      m.env,
		template: m.template,
		ctxFunc:  m.ctxFunc,
		logger:   m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}

		case err != nil:
			return editErrorMsg{err: err}

		case cmd.output == "" && cmd.template == m.template:
			return editCancelledMsg{}
		}

		return editTemplateMsg{template: cmd.template, output: cmd.output}
	})
}

// runEditor opens path in the editor named by $VISUAL or $EDITOR.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	// The editor variable may carry arguments, as in "code --wait".
	fields := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
