package models

import (
	"strings"
	"testing"
	"time"
)

func TestCreateTaskInputDefaults(t *testing.T) {
	input := CreateTaskInput{Title: "Write spec"}
	if err := input.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if input.Status != StatusTodo {
		t.Errorf("Status = %q, want %q", input.Status, StatusTodo)
	}
	if input.Priority != PriorityMedium {
		t.Errorf("Priority = %q, want %q", input.Priority, PriorityMedium)
	}
}

func TestCreateTaskInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateTaskInput
		wantErr bool
	}{
		{"valid", CreateTaskInput{Title: "Write spec"}, false},
		{"missing title", CreateTaskInput{}, true},
		{"title over limit", CreateTaskInput{Title: strings.Repeat("a", 201)}, true},
		{"title at limit", CreateTaskInput{Title: strings.Repeat("a", 200)}, false},
		{"multibyte title at limit", CreateTaskInput{Title: strings.Repeat("ü", 200)}, false},
		{"explicit status", CreateTaskInput{Title: "t", Status: StatusInProgress}, false},
		{"bad status", CreateTaskInput{Title: "t", Status: "blocked"}, true},
		{"bad priority", CreateTaskInput{Title: "t", Priority: "urgent"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTaskUpdateValidate(t *testing.T) {
	badStatus := TaskStatus("blocked")
	goodStatus := StatusCompleted
	badAssignee := "not-a-hex-id"
	clearAssignee := ""
	goodDueDate := "2026-09-15T12:00:00Z"
	badDueDate := "next tuesday"
	clearDueDate := ""

	tests := []struct {
		name    string
		update  TaskUpdate
		wantErr bool
	}{
		{"empty", TaskUpdate{}, false},
		{"valid status", TaskUpdate{Status: &goodStatus}, false},
		{"invalid status", TaskUpdate{Status: &badStatus}, true},
		{"invalid assignee id", TaskUpdate{AssignedTo: &badAssignee}, true},
		{"clearing assignee", TaskUpdate{AssignedTo: &clearAssignee}, false},
		{"valid due date", TaskUpdate{DueDate: &goodDueDate}, false},
		{"invalid due date", TaskUpdate{DueDate: &badDueDate}, true},
		{"clearing due date", TaskUpdate{DueDate: &clearDueDate}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTaskUpdateMovesColumn(t *testing.T) {
	task := &Task{Status: StatusTodo}

	same := StatusTodo
	if (&TaskUpdate{Status: &same}).MovesColumn(task) {
		t.Error("same-column update should not move the task")
	}

	moved := StatusInProgress
	if !(&TaskUpdate{Status: &moved}).MovesColumn(task) {
		t.Error("status change should move the task")
	}

	if (&TaskUpdate{}).MovesColumn(task) {
		t.Error("update without status should not move the task")
	}
}

func TestTaskUpdateApply(t *testing.T) {
	task := &Task{
		Title:    "Before",
		Status:   StatusTodo,
		Priority: PriorityMedium,
		Tags:     []string{"keep"},
	}

	title := "After"
	status := StatusInProgress
	tags := []string{"a", "b"}
	update := TaskUpdate{Title: &title, Status: &status, Tags: &tags}
	update.Apply(task)

	if task.Title != "After" || task.Status != StatusInProgress {
		t.Errorf("update not applied: title=%q status=%q", task.Title, task.Status)
	}
	if len(task.Tags) != 2 || task.Tags[0] != "a" {
		t.Errorf("tags = %v, want [a b]", task.Tags)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("priority changed to %q without being in the update", task.Priority)
	}
}

func TestTaskUpdateDueDateSetAndClear(t *testing.T) {
	task := &Task{Title: "t", Status: StatusTodo}

	set := "2026-09-15T12:00:00Z"
	(&TaskUpdate{DueDate: &set}).Apply(task)
	if task.DueDate == nil {
		t.Fatal("due date not set")
	}
	want, _ := time.Parse(time.RFC3339, set)
	if !task.DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", task.DueDate, want)
	}

	clear := ""
	(&TaskUpdate{DueDate: &clear}).Apply(task)
	if task.DueDate != nil {
		t.Errorf("due date = %v, want cleared", task.DueDate)
	}

	(&TaskUpdate{}).Apply(task)
	if task.DueDate != nil {
		t.Error("absent due date field must not change the task")
	}
}
