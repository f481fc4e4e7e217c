// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-interactive taskchat commands.
//
// Parse maps argv to a Command and global Args; Run executes it against an
// Env, which bundles the config, API client, credentials store and I/O.
//
//	cmd, args := cli.Parse(os.Args[1:])
//	env, err := cli.NewEnv(cfg, args)
//	if err == nil {
//	    err = cli.Run(ctx, cmd, args, env)
//	}
//	cli.HandleErrorAndExit(err, args.JSON)
//
// # Commands
//
//   - login, register, logout, whoami: account and session
//   - tasks: list, add, edit, done, undo and rm
//   - chat: line-mode assistant REPL
//   - history: saved conversations (list, show, rm, clear)
//   - config: show, get, set, keys and path
//
// Every command accepts --json. Errors map to distinct exit codes, see
// GetExitCode.
package cli
