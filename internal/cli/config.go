// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/jeranaias/taskchat-tui/internal/config"
)

// HandleConfig handles "taskchat config [show|get|set|keys|path]".
func HandleConfig(ctx context.Context, args Args, env *Env) error {
	p := NewArgParser(args.Raw)
	switch sub := p.Subcommand(); sub {
	case "", "show":
		return configShow(args, env)
	case "get":
		return configGet(p, args, env)
	case "set":
		return configSet(p, args, env)
	case "keys":
		return configKeys(args, env)
	case "path":
		return configPath(args, env)
	default:
		return NewValidationError("subcommand", sub, "unknown config command")
	}
}

func configShow(args Args, env *Env) error {
	if args.JSON {
		return WriteJSON(env.Out, env.Config, env.Color)
	}
	env.printf("%s\n", env.style(TitleStyle, "Configuration"))
	env.printf("%s\n", RenderSeparator(40))
	for _, key := range config.GetAllKeys() {
		val, err := env.Config.Get(key)
		if err != nil {
			continue
		}
		env.printf("%s %v\n", env.style(DimStyle, fmt.Sprintf("%-26s", key)), val)
	}
	env.printf("\n%s\n", env.style(DimStyle, "File: "+env.ConfigPath))
	return nil
}

func configGet(p *ArgParser, args Args, env *Env) error {
	key := p.Positional(1)
	if key == "" {
		return ErrMissingArgument("key", "taskchat config get server.base_url")
	}
	val, err := env.Config.Get(key)
	if err != nil {
		return NewValidationError("key", key, "unknown key (see taskchat config keys)")
	}
	if args.JSON {
		return WriteJSON(env.Out, map[string]any{"key": key, "value": val}, env.Color)
	}
	env.printf("%v\n", val)
	return nil
}

// configSet edits the config file. Environment overrides stay out of it.
func configSet(p *ArgParser, args Args, env *Env) error {
	key, value := p.Positional(1), p.Positional(2)
	if key == "" || p.PositionalCount() < 3 {
		return ErrMissingArgument("key and value", "taskchat config set ui.theme light")
	}
	if !slices.Contains(config.GetAllKeys(), key) {
		return NewValidationError("key", key, "unknown key (see taskchat config keys)")
	}

	cfg, err := config.LoadForEdit(env.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return NewValidationError(key, value, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, env.ConfigPath); err != nil {
		return err
	}

	saved, _ := cfg.Get(key)
	if args.JSON {
		return WriteJSON(env.Out, map[string]any{"success": true, "key": key, "value": saved}, env.Color)
	}
	if !args.Quiet {
		env.printf("%s %s = %v\n", env.style(SuccessStyle, "✓"), key, saved)
	}
	return nil
}

func configKeys(args Args, env *Env) error {
	keys := config.GetAllKeys()
	if args.JSON {
		return WriteJSON(env.Out, keys, env.Color)
	}
	for _, k := range keys {
		env.printf("%s\n", k)
	}
	return nil
}

func configPath(args Args, env *Env) error {
	if args.JSON {
		return WriteJSON(env.Out, map[string]string{"path": env.ConfigPath}, env.Color)
	}
	env.printf("%s\n", env.ConfigPath)
	return nil
}
