package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// console reads answers from the command's stdin. A terminal gets line
// editing and hidden password entry; pipes are read line by line.
type console struct {
	in     io.Reader
	errOut io.Writer
	tty    *os.File
	buf    *bufio.Reader
}

func newConsole(cmd *cobra.Command) *console {
	c := &console{in: cmd.InOrStdin(), errOut: cmd.ErrOrStderr()}
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		c.tty = f
	}
	return c
}

func (c *console) readLine(prompt string) (string, error) {
	if c.tty != nil {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          prompt,
			Stdout:          c.errOut,
			InterruptPrompt: "^C",
		})
		if err != nil {
			return "", fmt.Errorf("failed to initialize prompt: %w", err)
		}
		defer func() { _ = rl.Close() }()
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return strings.TrimSpace(line), err
	}

	_, _ = fmt.Fprint(c.errOut, prompt)
	if c.buf == nil {
		c.buf = bufio.NewReader(c.in)
	}
	line, err := c.buf.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *console) readPassword(prompt string) (string, error) {
	if c.tty == nil {
		return c.readLine(prompt)
	}
	_, _ = fmt.Fprint(c.errOut, prompt)
	secret, err := term.ReadPassword(int(c.tty.Fd())) //nolint:gosec // fd fits in int
	_, _ = fmt.Fprintln(c.errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

// prompter asks confirm/cancel questions on the console. Anything but the
// confirm label (or its first letter, or "y") cancels.
func (c *console) prompter(r *output.Renderer) auth.Prompter {
	return auth.PrompterFunc(func(_ context.Context, p auth.Prompt) (auth.Choice, error) {
		r.Notice(string(p.Type), p.Title+": "+p.Message)
		answer, err := c.readLine(fmt.Sprintf("%s/%s [%s]: ", p.Confirm, p.Cancel, p.Cancel))
		if err != nil {
			return auth.ChoiceCancel, err
		}
		return parseChoice(answer, p), nil
	})
}

func parseChoice(answer string, p auth.Prompt) auth.Choice {
	a := strings.ToLower(strings.TrimSpace(answer))
	confirm := strings.ToLower(p.Confirm)
	switch {
	case a == "":
		return auth.ChoiceCancel
	case a == confirm, a == "y", a == "yes", confirm != "" && a == confirm[:1]:
		return auth.ChoiceConfirm
	default:
		return auth.ChoiceCancel
	}
}
