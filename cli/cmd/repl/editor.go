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

	"github.com/ardnew/matscript/log"
	"github.com/ardnew/matscript/material"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-parse-retry loop.
// It writes the source of the current script to a temp file, opens the
// user's editor, and parses the result. On a parse error the user is asked
// to re-edit; declining exits the program.
type editCommand struct {
	source  string
	ctxFunc func() context.Context
	edited  *material.File
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. An empty result cancels the edit
// and leaves c.edited nil.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "matscript-repl-*.material")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	content := c.source

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

		content = string(data)

		if strings.TrimSpace(content) == "" {
			return nil
		}

		edited, parseErr := material.ParseString(ctx, content,
			material.WithLogger(c.logger))

		c.logger.TraceContext(ctx, "editor parse attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", parseErr == nil))

		if parseErr == nil {
			c.edited = edited

			return nil
		}

		fmt.Fprintf(c.stderr, "\nParse error: %s\n", parseErr)

		var merr *material.Error
		if errors.As(parseErr, &merr) {
			if pos, ok := merr.Position(); ok {
				fmt.Fprint(c.stderr, material.FormatSnippet(content, pos))
			}
		}

		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor runs $EDITOR (or vi) on the file at path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
