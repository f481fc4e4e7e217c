// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jeranaias/taskchat-tui/internal/model"
)

// TaskInput is the body for creating a task.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TaskPatch is the body for updating a task. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

func taskPath(id int) string {
	return fmt.Sprintf("/api/tasks/%d", id)
}

// ListTasks returns the user's tasks matching filter.
func (c *Client) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	query := url.Values{}
	switch filter {
	case model.FilterPending:
		query.Set("completed", "false")
	case model.FilterCompleted:
		query.Set("completed", "true")
	}

	var out []model.Task
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/tasks",
		query:  query,
		out:    &out,
		auth:   true,
		retry:  true,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Task{}
	}
	return out, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id int) (*model.Task, error) {
	var out model.Task
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   taskPath(id),
		out:    &out,
		auth:   true,
		retry:  true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask creates a task. Title and description are sanitized first.
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*model.Task, error) {
	in.Title = model.SanitizeTitle(in.Title)
	in.Description = model.SanitizeDescription(in.Description)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	var out model.Task
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/tasks",
		body:   in,
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask applies patch to the task.
func (c *Client) UpdateTask(ctx context.Context, id int, patch TaskPatch) (*model.Task, error) {
	if patch.Title != nil {
		title := model.SanitizeTitle(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		desc := model.SanitizeDescription(*patch.Description)
		patch.Description = &desc
	}

	var out model.Task
	err := c.do(ctx, call{
		method: http.MethodPut,
		path:   taskPath(id),
		body:   patch,
		out:    &out,
		auth:   true,
		retry:  true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleComplete flips the task's completion state.
func (c *Client) ToggleComplete(ctx context.Context, id int) (*model.Task, error) {
	var out model.Task
	err := c.do(ctx, call{
		method: http.MethodPatch,
		path:   taskPath(id) + "/complete",
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes the task.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   taskPath(id),
		auth:   true,
		retry:  true,
	})
}
