package types

import "fmt"

// TaskStatus represents the lifecycle state of a task execution
type TaskStatus string

const (
	TaskStatusCreated         TaskStatus = "CREATED"
	TaskStatusPlanned         TaskStatus = "PLANNED"
	TaskStatusExecuting       TaskStatus = "EXECUTING"
	TaskStatusWaitingApproval TaskStatus = "WAITING_APPROVAL"
	TaskStatusPublished       TaskStatus = "PUBLISHED"
	TaskStatusFailed          TaskStatus = "FAILED"
)

// AllTaskStatuses returns all valid task statuses
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusCreated,
		TaskStatusPlanned,
		TaskStatusExecuting,
		TaskStatusWaitingApproval,
		TaskStatusPublished,
		TaskStatusFailed,
	}
}

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusCreated,
		TaskStatusPlanned,
		TaskStatusExecuting,
		TaskStatusWaitingApproval,
		TaskStatusPublished,
		TaskStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status allows no further transitions
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusPublished || s == TaskStatusFailed
}

// CanTransition reports whether a transition from s to next is allowed.
// Terminal statuses never transition.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case TaskStatusCreated:
		return next == TaskStatusPlanned || next == TaskStatusFailed
	case TaskStatusPlanned:
		return next == TaskStatusExecuting || next == TaskStatusFailed
	case TaskStatusExecuting:
		return next == TaskStatusWaitingApproval || next == TaskStatusPublished || next == TaskStatusFailed
	case TaskStatusWaitingApproval:
		return next == TaskStatusExecuting || next == TaskStatusPublished || next == TaskStatusFailed
	default:
		return false
	}
}

// String returns the string representation of the task status
func (s TaskStatus) String() string {
	return string(s)
}

// ParseTaskStatus parses a string into a TaskStatus
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status: %s", s)
	}
	return status, nil
}
