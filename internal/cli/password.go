package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordEnv names the variable consulted when no --password flag is given.
const PasswordEnv = "LEDGER_PASSWORD"

// PasswordSource resolves a password from a flag value, the environment or an
// interactive prompt, in that order.
type PasswordSource struct {
	In  *os.File
	Out io.Writer
}

// Resolve returns flagValue when set, then $LEDGER_PASSWORD, then prompts.
// On a terminal the prompt does not echo.
func (p PasswordSource) Resolve(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(PasswordEnv); v != "" {
		return v, nil
	}

	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprint(out, prompt)

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return readLine(in)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
