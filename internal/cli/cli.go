// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdRegister
	CmdLogout
	CmdWhoami
	CmdTasks
	CmdChat
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdRegister:
		return "register"
	case CmdLogout:
		return "logout"
	case CmdWhoami:
		return "whoami"
	case CmdTasks:
		return "tasks"
	case CmdChat:
		return "chat"
	case CmdHistory:
		return "history"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	// Server overrides server.base_url for this run.
	Server string
	// ConfigFile replaces ~/.taskchat/config.toml for this run.
	ConfigFile string

	// Unknown is set when the command word was not recognized.
	Unknown string

	// Raw holds the arguments after the command word.
	Raw []string
}

const usageText = `taskchat - ADDit DOit tasks and AI assistant in your terminal

Usage:
  taskchat                          Start the TUI (default)
  taskchat login [--email E]        Log in and save the token
  taskchat register [--email E]     Create an account
  taskchat logout                   Forget the saved token
  taskchat whoami                   Show the logged-in account
  taskchat tasks [subcommand]       Manage tasks
  taskchat chat                     Chat with the task assistant
  taskchat history [subcommand]     Local chat history
  taskchat config [subcommand]      Configuration
  taskchat version                  Version information

Task Commands:
  taskchat tasks list               List tasks (default)
    --pending | --done | --all      Filter (default: all)
  taskchat tasks add <title>        Create a task
    --desc TEXT                     Description
  taskchat tasks edit <id>          Change a task
    --title TEXT --desc TEXT
  taskchat tasks done <id>          Mark a task completed
  taskchat tasks undo <id>          Mark a task pending again
  taskchat tasks rm <id> --confirm  Delete a task

History Commands:
  taskchat history list             Saved conversations, newest first
    --limit N                       Show at most N
  taskchat history show <id>        Print a conversation (id prefix is fine)
  taskchat history rm <id>          Delete a conversation
  taskchat history clear --confirm  Delete all local history

Config Commands:
  taskchat config show              Print the effective configuration
  taskchat config get <key>         Print one value (e.g. server.base_url)
  taskchat config set <key> <val>   Change and save one value
  taskchat config keys              List settable keys
  taskchat config path              Print the config file location

Chat Commands (inside taskchat chat):
  /new                              Start a new conversation
  /help                             Show chat commands
  /quit, Ctrl+D                     Leave

Global Flags:
  --server URL      Backend URL for this run (env: TASKCHAT_API_URL)
  --config FILE     Use FILE instead of ~/.taskchat/config.toml
  --json            Machine-readable output
  -q, --quiet       Minimal output
  -v, --verbose     Debug logging to the log file

Environment:
  TASKCHAT_HOME     Config directory (default: ~/.taskchat)
  TASKCHAT_TOKEN    Use this token instead of the saved login

Examples:
  taskchat login --email ada@example.com
  taskchat tasks add Buy milk --desc "oat, 2 litres"
  taskchat tasks list --pending --json
  taskchat tasks done 3
  echo "what is left for today?" | taskchat chat

Version: %s
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "taskchat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	word := strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch word {
	case "tui":
		return CmdTUI, args
	case "login", "signin":
		return CmdLogin, args
	case "register", "signup":
		return CmdRegister, args
	case "logout", "signout":
		return CmdLogout, args
	case "whoami", "me":
		return CmdWhoami, args
	case "tasks", "task", "t":
		return CmdTasks, args
	case "chat":
		return CmdChat, args
	case "history", "hist":
		return CmdHistory, args
	case "config", "cfg":
		return CmdConfig, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		args.Unknown = remaining[0]
		return CmdHelp, args
	}
}

// parseGlobalFlags extracts global flags wherever they appear.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--json":
			args.JSON = true
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "--server":
			if i+1 < len(argv) {
				i++
				args.Server = argv[i]
			}
		case strings.HasPrefix(arg, "--server="):
			args.Server = strings.TrimPrefix(arg, "--server=")
		case arg == "--config":
			if i+1 < len(argv) {
				i++
				args.ConfigFile = argv[i]
			}
		case strings.HasPrefix(arg, "--config="):
			args.ConfigFile = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes a non-TUI command.
func Run(ctx context.Context, cmd Command, args Args, env *Env) error {
	switch cmd {
	case CmdLogin:
		return HandleLogin(ctx, args, env)
	case CmdRegister:
		return HandleRegister(ctx, args, env)
	case CmdLogout:
		return HandleLogout(ctx, args, env)
	case CmdWhoami:
		return HandleWhoami(ctx, args, env)
	case CmdTasks:
		return HandleTasks(ctx, args, env)
	case CmdChat:
		return HandleChat(ctx, args, env)
	case CmdHistory:
		return HandleHistory(ctx, args, env)
	case CmdConfig:
		return HandleConfig(ctx, args, env)
	case CmdVersion:
		PrintVersion(env.Out)
		return nil
	case CmdHelp:
		if args.Unknown != "" {
			return &ValidationError{
				Field:   "command",
				Value:   args.Unknown,
				Reason:  "unknown command",
				Example: "taskchat help",
			}
		}
		PrintUsage(env.Out)
		return nil
	default:
		return fmt.Errorf("%s cannot run outside the TUI", cmd)
	}
}
