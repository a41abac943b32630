package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/pkg/core/session"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (connect once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands against one
database connection and snapshot cache. The session will keep running until you type
'exit' or 'quit'.

When sessionPasswordHash is configured, 'login' must succeed before other commands run.
Type 'refresh' to drop cached snapshots and 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			sh := &shell{app: app, commands: commands, out: cmd.OutOrStdout()}
			return sh.run(os.Stdin)
		},
	}

	return cmd
}

type shell struct {
	app      *AppContext
	commands map[string]*cobra.Command
	out      io.Writer
	prompt   *passwordPrompt
}

func (s *shell) run(in io.Reader) error {
	fmt.Fprintln(s.out, "\n🚀 Starting interactive session...")
	fmt.Fprintln(s.out, "Type 'help' for available commands, 'exit' or 'quit' to leave")
	if s.app.Gate.State() != session.Authenticated {
		fmt.Fprintln(s.out, "🔒 Type 'login' to authenticate")
	}

	scanner := bufio.NewScanner(in)
	s.prompt = newPasswordPrompt(in, s.out, scanner)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts, err := parseCommandLine(line)
		if err != nil {
			fmt.Fprintf(s.out, "❌ Error parsing command: %v\n\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}

		if done := s.dispatch(parts); done {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// dispatch runs one command line and reports whether the session should end
func (s *shell) dispatch(parts []string) bool {
	cmdName, cmdArgs := parts[0], parts[1:]

	switch cmdName {
	case "exit", "quit":
		fmt.Fprintln(s.out, "👋 Goodbye!")
		return true
	case "help":
		s.printHelp()
		return false
	case "login":
		s.login(cmdArgs)
		return false
	case "logout":
		s.app.Gate.Logout()
		fmt.Fprintln(s.out, "🔒 Logged out")
		return false
	}

	if err := s.app.Gate.Require(); err != nil {
		fmt.Fprintln(s.out, "🔒 Not authenticated: type 'login' first")
		return false
	}

	if cmdName == "refresh" {
		n := s.app.Cache.Len()
		s.app.Cache.Clear()
		s.app.Logger.Debug("Snapshot cache cleared", zap.Int("entries", n))
		fmt.Fprintf(s.out, "✓ Dropped %d cached snapshots\n\n", n)
		return false
	}

	targetCmd, exists := s.commands[cmdName]
	if !exists {
		fmt.Fprintf(s.out, "❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
		return false
	}

	targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		flag.Value.Set(flag.DefValue)
	})

	// RunE is called directly so PersistentPreRunE does not reconnect
	if err := targetCmd.ParseFlags(cmdArgs); err != nil {
		fmt.Fprintf(s.out, "❌ Error parsing flags: %v\n\n", err)
		return false
	}
	cmdArgs = targetCmd.Flags().Args()

	if targetCmd.Args != nil {
		if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
			fmt.Fprintf(s.out, "❌ Error: %v\n\n", err)
			return false
		}
	}

	targetCmd.SetOut(s.out)
	if targetCmd.RunE != nil {
		if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
			fmt.Fprintf(s.out, "❌ Error: %v\n\n", err)
		}
	} else if targetCmd.Run != nil {
		targetCmd.Run(targetCmd, cmdArgs)
	}
	return false
}

// login prompts for the password. Passwords on the command line are refused
// since they would be echoed.
func (s *shell) login(args []string) {
	if !s.app.Gate.Enabled() {
		fmt.Fprintln(s.out, "✓ No password configured")
		return
	}
	if len(args) > 0 {
		fmt.Fprintln(s.out, "❌ Usage: login (the password is prompted for)")
		return
	}

	password, err := s.prompt.read("Password: ")
	if err != nil {
		if !errors.Is(err, io.EOF) {
			fmt.Fprintf(s.out, "❌ Error: %v\n", err)
		}
		return
	}

	if err := s.app.Gate.Login(password); err != nil {
		if errors.Is(err, session.ErrIncorrectPassword) {
			fmt.Fprintln(s.out, "❌ Incorrect password")
			return
		}
		fmt.Fprintf(s.out, "❌ Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "✓ Logged in")
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "\nAvailable commands:")

	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := s.commands[name]
		fmt.Fprintf(s.out, "  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Fprintln(s.out, "\n  login                          Authenticate the session")
	fmt.Fprintln(s.out, "  logout                         End the authenticated session")
	fmt.Fprintln(s.out, "  refresh                        Drop cached snapshots")
	fmt.Fprintln(s.out, "  help                           Show this help message")
	fmt.Fprintln(s.out, "  exit, quit                     Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting single and
// double quotes
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args, nil
}
