package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskhub-api/internal/models"
)

// TaskChanges is the outcome of comparing a sparse update with the stored task.
type TaskChanges struct {
	// Fields holds the columns to write, keyed by column name.
	Fields map[string]interface{}
	// Changed lists the client-visible fields that differ, in a fixed order.
	Changed []string
	Action  models.ActivityAction
	Details string
	// NewAssigneeID is set when the task moves to a different, non-null assignee.
	NewAssigneeID *uint64
}

// DiffTask compares input with existing and derives the column writes and
// the single activity entry for the update. When several fields change the
// activity action is chosen as STATUS_CHANGE, then ASSIGN, then ARCHIVE,
// then UPDATE; the details name every other changed field.
func DiffTask(existing *models.Task, input UpdateTaskInput, now time.Time) TaskChanges {
	c := TaskChanges{Fields: map[string]interface{}{}}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title != existing.Title {
			c.set("title", "title", title)
		}
	}

	switch {
	case input.ClearDescription:
		if existing.Description != nil {
			c.set("description", "description", nil)
		}
	case input.Description != nil:
		if existing.Description == nil || *existing.Description != *input.Description {
			c.set("description", "description", *input.Description)
		}
	}

	statusChanged := input.Status != nil && *input.Status != existing.Status
	if statusChanged {
		c.set("status", "status", *input.Status)
		switch {
		case *input.Status == models.TaskStatusDone:
			c.Fields["completed_at"] = now
		case existing.Status == models.TaskStatusDone:
			c.Fields["completed_at"] = nil
		}
	}

	if input.Priority != nil && *input.Priority != existing.Priority {
		c.set("priority", "priority", *input.Priority)
	}

	if input.Department != nil && *input.Department != existing.Department {
		c.set("department", "department", *input.Department)
	}

	switch {
	case input.ClearDueDate:
		if existing.DueDate != nil {
			c.set("dueDate", "due_date", nil)
		}
	case input.DueDate != nil:
		if existing.DueDate == nil || !existing.DueDate.Equal(*input.DueDate) {
			c.set("dueDate", "due_date", *input.DueDate)
		}
	}

	switch {
	case input.ClearAssignee:
		if existing.AssigneeID != nil {
			c.set("assigneeId", "assignee_id", nil)
		}
	case input.AssigneeID != nil:
		if existing.AssigneeID == nil || *existing.AssigneeID != *input.AssigneeID {
			c.set("assigneeId", "assignee_id", *input.AssigneeID)
			id := *input.AssigneeID
			c.NewAssigneeID = &id
		}
	}

	archiveChanged := input.IsArchived != nil && *input.IsArchived != existing.IsArchived
	if archiveChanged {
		c.set("isArchived", "is_archived", *input.IsArchived)
		if *input.IsArchived {
			c.Fields["archived_at"] = now
		} else {
			c.Fields["archived_at"] = nil
		}
	}

	var primary, sentence string
	switch {
	case statusChanged:
		primary = "status"
		c.Action = models.ActivityStatusChange
		sentence = fmt.Sprintf("status changed from %q to %q", existing.Status.Label(), input.Status.Label())
	case c.NewAssigneeID != nil:
		primary = "assigneeId"
		c.Action = models.ActivityAssign
		sentence = "task assigned"
	case archiveChanged:
		primary = "isArchived"
		c.Action = models.ActivityArchive
		if *input.IsArchived {
			sentence = "task archived"
		} else {
			sentence = "task restored from archive"
		}
	default:
		c.Action = models.ActivityUpdate
		if len(c.Changed) == 0 {
			c.Details = "task updated"
		} else {
			c.Details = "task updated: " + strings.Join(c.Changed, ", ")
		}
		return c
	}

	var others []string
	for _, f := range c.Changed {
		if f != primary {
			others = append(others, f)
		}
	}
	c.Details = sentence
	if len(others) > 0 {
		c.Details += " (also changed: " + strings.Join(others, ", ") + ")"
	}

	return c
}

func (c *TaskChanges) set(field, column string, value interface{}) {
	c.Fields[column] = value
	c.Changed = append(c.Changed, field)
}
