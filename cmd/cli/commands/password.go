package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jakechorley/lead-allocator/pkg/core/session"
)

// SkipInitAnnotation marks commands that run without config or database
const SkipInitAnnotation = "skipInit"

// passwordPrompt reads passwords without echo from a terminal, or as plain lines
// from any other input
type passwordPrompt struct {
	out     io.Writer
	scanner *bufio.Scanner
	fd      int // -1 when input is not a terminal
}

func newPasswordPrompt(in io.Reader, out io.Writer, scanner *bufio.Scanner) *passwordPrompt {
	p := &passwordPrompt{out: out, scanner: scanner, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(in)
	}
	return p
}

func (p *passwordPrompt) terminal() bool {
	return p.fd >= 0
}

func (p *passwordPrompt) read(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	if p.terminal() {
		b, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// HashPasswordCmd creates the hashPassword command
func HashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "hashPassword",
		Short:       "Print a bcrypt hash to use as sessionPasswordHash",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{SkipInitAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := newPasswordPrompt(cmd.InOrStdin(), cmd.OutOrStdout(), nil)

			password, err := prompt.read("Password: ")
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}

			if prompt.terminal() {
				confirm, err := prompt.read("Confirm password: ")
				if err != nil {
					return err
				}
				if confirm != password {
					return fmt.Errorf("passwords do not match")
				}
			}

			hash, err := session.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nsessionPasswordHash: %q\n", hash)
			return nil
		},
	}
}
