// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/util"
)

const tasksUsage = "taskchat tasks [list|add|edit|done|undo|rm]"

// titleColumnWidth bounds the title column of `tasks list`.
const titleColumnWidth = 48

// HandleTasks handles "taskchat tasks [subcommand]".
func HandleTasks(ctx context.Context, args Args, env *Env) error {
	p := NewArgParser(args.Raw)

	client, _, err := env.AuthedClient()
	if err != nil {
		return err
	}

	switch p.Subcommand() {
	case "", "list", "ls":
		return tasksList(ctx, client, p, args, env)
	case "add", "new":
		return tasksAdd(ctx, client, p, args, env)
	case "edit":
		return tasksEdit(ctx, client, p, args, env)
	case "done", "complete":
		return tasksSetDone(ctx, client, p, args, env, true)
	case "undo", "reopen":
		return tasksSetDone(ctx, client, p, args, env, false)
	case "rm", "delete", "del":
		return tasksDelete(ctx, client, p, args, env)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   p.Subcommand(),
			Reason:  "unknown tasks subcommand",
			Example: tasksUsage,
		}
	}
}

// filterFromFlags reads --pending, --done, --all or --filter.
func filterFromFlags(p *ArgParser) (model.TaskFilter, error) {
	switch {
	case p.BoolFlag("pending"):
		return model.FilterPending, nil
	case p.BoolFlag("done") || p.BoolFlag("completed"):
		return model.FilterCompleted, nil
	case p.BoolFlag("all"):
		return model.FilterAll, nil
	}
	return model.ParseTaskFilter(p.Flag("filter"))
}

func tasksList(ctx context.Context, client *api.Client, p *ArgParser, args Args, env *Env) error {
	filter, err := filterFromFlags(p)
	if err != nil {
		return NewValidationError("filter", p.Flag("filter"), err.Error())
	}
	tasks, err := client.ListTasks(ctx, filter)
	if err != nil {
		return err
	}
	// Older backends ignore the query parameter.
	tasks = model.SortTasks(model.FilterTasks(tasks, filter))

	if args.JSON {
		return WriteJSON(env.Out, tasks, env.Color)
	}
	if len(tasks) == 0 {
		if filter == model.FilterAll {
			env.printf("No tasks yet. Add one with: taskchat tasks add <title>\n")
		} else {
			env.printf("No %s tasks.\n", filter)
		}
		return nil
	}

	renderTaskTable(env.Out, tasks)
	if !args.Quiet {
		env.printf("\n%s\n", env.style(DimStyle, model.Stats(tasks).String()))
	}
	return nil
}

// newTable returns a borderless, left-aligned table.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// renderTaskTable writes tasks as a borderless table.
func renderTaskTable(w io.Writer, tasks []model.Task) {
	table := newTable(w, "ID", "Done", "Title", "Created")

	for _, t := range tasks {
		check := "[ ]"
		if t.IsCompleted {
			check = "[x]"
		}
		table.Append([]string{
			strconv.Itoa(t.ID),
			check,
			util.Truncate(t.Title, titleColumnWidth),
			t.CreatedDate(),
		})
	}
	table.Render()
}

func tasksAdd(ctx context.Context, client *api.Client, p *ArgParser, args Args, env *Env) error {
	title := JoinPositionalArgs(p, 1)
	if title == "" {
		title = p.Flag("title")
	}
	form := auth.TaskForm{Title: title, Description: p.Flag("desc")}
	if err := form.Validate(); err != nil {
		if title == "" {
			return ErrMissingArgument("title", "taskchat tasks add Buy milk --desc \"oat, 2 litres\"")
		}
		return formError(err)
	}

	task, err := client.CreateTask(ctx, api.TaskInput{Title: form.Title, Description: form.Description})
	if err != nil {
		return err
	}
	return reportTask(env, args, task, "Created")
}

func tasksEdit(ctx context.Context, client *api.Client, p *ArgParser, args Args, env *Env) error {
	id, err := ParseID(p.Positional(1), "task id")
	if err != nil {
		return err
	}

	var patch api.TaskPatch
	if p.HasFlag("title") {
		title := p.Flag("title")
		patch.Title = &title
	}
	if p.HasFlag("desc") {
		desc := p.Flag("desc")
		patch.Description = &desc
	}
	if patch.Title == nil && patch.Description == nil {
		return ErrMissingArgument("--title or --desc", fmt.Sprintf("taskchat tasks edit %d --title \"New title\"", id))
	}

	form := auth.TaskForm{Title: "unchanged"}
	if patch.Title != nil {
		form.Title = *patch.Title
	}
	if patch.Description != nil {
		form.Description = *patch.Description
	}
	if err := form.Validate(); err != nil {
		return formError(err)
	}

	task, err := client.UpdateTask(ctx, id, patch)
	if err != nil {
		return err
	}
	return reportTask(env, args, task, "Updated")
}

// tasksSetDone completes or reopens a task. The backend only toggles, so
// the current state is read first to keep the command idempotent.
func tasksSetDone(ctx context.Context, client *api.Client, p *ArgParser, args Args, env *Env, done bool) error {
	id, err := ParseID(p.Positional(1), "task id")
	if err != nil {
		return err
	}

	task, err := client.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task.IsCompleted != done {
		if task, err = client.ToggleComplete(ctx, id); err != nil {
			return err
		}
	}

	verb := "Completed"
	if !done {
		verb = "Reopened"
	}
	return reportTask(env, args, task, verb)
}

func tasksDelete(ctx context.Context, client *api.Client, p *ArgParser, args Args, env *Env) error {
	id, err := ParseID(p.Positional(1), "task id")
	if err != nil {
		return err
	}

	if !p.BoolFlag("confirm") && !p.BoolFlag("y") {
		if !env.Interactive {
			return errConfirmRequired(fmt.Sprintf("taskchat tasks rm %d --confirm", id))
		}
		task, err := client.GetTask(ctx, id)
		if err != nil {
			return err
		}
		ok, err := env.Confirm(fmt.Sprintf("Delete task #%d %q?", id, task.Title))
		if err != nil {
			return err
		}
		if !ok {
			env.printf("Cancelled.\n")
			return nil
		}
	}

	if err := client.DeleteTask(ctx, id); err != nil {
		return err
	}

	if args.JSON {
		return WriteJSON(env.Out, map[string]any{"deleted": id}, env.Color)
	}
	if !args.Quiet {
		env.printf("%s Deleted task #%d\n", env.style(SuccessStyle, "✓"), id)
	}
	return nil
}

// reportTask prints the outcome of a change to one task.
func reportTask(env *Env, args Args, task *model.Task, verb string) error {
	if args.JSON {
		return WriteJSON(env.Out, task, env.Color)
	}
	if args.Quiet {
		env.printf("%d\n", task.ID)
		return nil
	}
	env.printf("%s %s task #%d: %s\n", env.style(SuccessStyle, "✓"), verb, task.ID, task.Title)
	return nil
}
