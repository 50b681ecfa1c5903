package task

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

const (
	MinTitleLength       = 5
	MinDescriptionLength = 10
)

// Spec is the input for creating a task.
type Spec struct {
	ID          string
	ProjectID   string
	CreatorID   string
	AssigneeID  string
	Title       string
	Description string
	StoryPoints int
	Difficulty  string
	Priority    string
	DueDate     calendar.Date
	Tags        []string
}

// Task is a unit of project work that is claimed, completed and scored.
type Task struct {
	domain.BaseAggregateRoot
	projectID   string
	creatorID   string
	assigneeID  string
	title       string
	description string
	storyPoints StoryPoints
	difficulty  Difficulty
	priority    Priority
	baseScore   int
	dueDate     calendar.Date
	tags        []string
	status      Status
	blockedFrom Status
	blockReason string
	assignedAt  *time.Time
	completedAt *time.Time
	score       *scoring.Result
}

// New validates spec and creates a task. A task created with an assignee
// starts in todo, otherwise it is available for claiming.
func New(spec Spec, now time.Time) (*Task, error) {
	now = now.UTC()

	title := strings.TrimSpace(spec.Title)
	if utf8.RuneCountInString(title) < MinTitleLength {
		return nil, domain.InvalidSpecf("title must be at least %d characters", MinTitleLength)
	}
	description := strings.TrimSpace(spec.Description)
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return nil, domain.InvalidSpecf("description must be at least %d characters", MinDescriptionLength)
	}
	if strings.TrimSpace(spec.ProjectID) == "" {
		return nil, domain.InvalidSpecf("project is required")
	}
	if strings.TrimSpace(spec.CreatorID) == "" {
		return nil, domain.InvalidSpecf("creator is required")
	}

	points, err := NewStoryPoints(spec.StoryPoints)
	if err != nil {
		return nil, err
	}
	difficulty, err := ParseDifficulty(spec.Difficulty)
	if err != nil {
		return nil, err
	}
	priority, err := ParsePriority(spec.Priority)
	if err != nil {
		return nil, err
	}
	if priority == "" {
		priority = difficulty.DefaultPriority()
	}

	if spec.DueDate.IsZero() {
		return nil, domain.InvalidSpecf("due date is required")
	}
	if spec.DueDate.Before(calendar.DateOf(now)) {
		return nil, domain.InvalidSpecf("due date %s is in the past", spec.DueDate)
	}

	t := &Task{
		BaseAggregateRoot: domain.NewAggregateRoot(strings.TrimSpace(spec.ID), now),
		projectID:         spec.ProjectID,
		creatorID:         spec.CreatorID,
		title:             title,
		description:       description,
		storyPoints:       points,
		difficulty:        difficulty,
		priority:          priority,
		baseScore:         points.BaseScore(),
		dueDate:           spec.DueDate,
		tags:              NormalizeTags(spec.Tags),
		status:            StatusAvailable,
	}

	if assignee := strings.TrimSpace(spec.AssigneeID); assignee != "" {
		t.assigneeID = assignee
		t.assignedAt = &now
		t.status = StatusTodo
	}

	t.AddDomainEvent(newTaskCreated(t, now))

	return t, nil
}

// Getters

func (t *Task) ProjectID() string           { return t.projectID }
func (t *Task) CreatorID() string           { return t.creatorID }
func (t *Task) AssigneeID() string          { return t.assigneeID }
func (t *Task) Title() string               { return t.title }
func (t *Task) Description() string         { return t.description }
func (t *Task) StoryPoints() StoryPoints    { return t.storyPoints }
func (t *Task) Difficulty() Difficulty      { return t.difficulty }
func (t *Task) Priority() Priority          { return t.priority }
func (t *Task) BaseScore() int              { return t.baseScore }
func (t *Task) DueDate() calendar.Date      { return t.dueDate }
func (t *Task) Tags() []string              { return append([]string(nil), t.tags...) }
func (t *Task) Status() Status              { return t.status }
func (t *Task) BlockedFrom() Status         { return t.blockedFrom }
func (t *Task) BlockReason() string         { return t.blockReason }
func (t *Task) AssignedAt() *time.Time      { return t.assignedAt }
func (t *Task) CompletedAt() *time.Time     { return t.completedAt }
func (t *Task) Score() *scoring.Result      { return t.score }
func (t *Task) IsAvailable() bool           { return t.status == StatusAvailable }
func (t *Task) IsCompleted() bool           { return t.status == StatusCompleted }
func (t *Task) IsAssignedTo(id string) bool { return t.assigneeID != "" && t.assigneeID == id }

// Completion returns the scored outcome, or false when the task is not completed.
func (t *Task) Completion() (scoring.Completion, bool) {
	if !t.IsCompleted() || t.score == nil || t.completedAt == nil {
		return scoring.Completion{}, false
	}
	return scoring.Completion{
		TaskID:      t.ID(),
		UserID:      t.assigneeID,
		CompletedAt: *t.completedAt,
		FinalScore:  t.score.FinalScore,
	}, true
}

// Claim assigns an available task to the developer.
func (t *Task) Claim(userID string, now time.Time) error {
	if t.status != StatusAvailable {
		return newUnavailableError(t.ID(), t.status)
	}
	if strings.TrimSpace(userID) == "" {
		return domain.InvalidSpecf("claiming user is required")
	}

	now = now.UTC()
	t.assigneeID = userID
	t.assignedAt = &now
	t.status = StatusTodo
	t.Touch(now)

	t.AddDomainEvent(newTaskClaimed(t, now))
	return nil
}

// Start moves a todo task into progress. Only the assignee may start it.
func (t *Task) Start(callerID string, now time.Time) error {
	return t.advance(callerID, StatusTodo, StatusInProgress, RoutingKeyStarted, now)
}

// Submit hands an in-progress task over for review. Only the assignee may submit it.
func (t *Task) Submit(callerID string, now time.Time) error {
	return t.advance(callerID, StatusInProgress, StatusReview, RoutingKeySubmitted, now)
}

func (t *Task) advance(callerID string, from, to Status, routingKey string, now time.Time) error {
	if t.status != from {
		return newTransitionError(t.ID(), t.status, to)
	}
	if !t.IsAssignedTo(callerID) {
		return domain.Forbiddenf("only the assignee may move task %s to %s", t.ID(), to)
	}
	t.moveTo(to, callerID, routingKey, now)
	return nil
}

// Approve completes a task under review and stamps its score.
func (t *Task) Approve(approverID string, policy scoring.Policy, override scoring.Override, now time.Time) error {
	if t.status != StatusReview {
		return newTransitionError(t.ID(), t.status, StatusCompleted)
	}

	now = now.UTC()
	result, err := policy.Compute(t.baseScore, t.dueDate, calendar.DateOf(now), override)
	if err != nil {
		return err
	}

	t.status = StatusCompleted
	t.completedAt = &now
	t.score = &result
	t.Touch(now)

	t.AddDomainEvent(newTaskApproved(t, approverID, now))
	return nil
}

// Reject returns a task under review to the assignee for rework.
func (t *Task) Reject(actorID string, now time.Time) error {
	if t.status != StatusReview {
		return newTransitionError(t.ID(), t.status, StatusInProgress)
	}
	t.moveTo(StatusInProgress, actorID, RoutingKeyRejected, now)
	return nil
}

// Block parks an assigned, unfinished task and remembers where it came from.
func (t *Task) Block(actorID, reason string, now time.Time) error {
	switch t.status {
	case StatusTodo, StatusInProgress, StatusReview:
	default:
		return newTransitionError(t.ID(), t.status, StatusBlocked)
	}
	t.blockedFrom = t.status
	t.blockReason = strings.TrimSpace(reason)
	t.moveTo(StatusBlocked, actorID, RoutingKeyBlocked, now)
	return nil
}

// Unblock returns a blocked task to the status it was blocked from.
func (t *Task) Unblock(actorID string, now time.Time) error {
	if t.status != StatusBlocked {
		return newTransitionError(t.ID(), t.status, StatusTodo)
	}
	target := t.blockedFrom
	t.blockedFrom = StatusAvailable
	t.blockReason = ""
	t.moveTo(target, actorID, RoutingKeyUnblocked, now)
	return nil
}

func (t *Task) moveTo(to Status, actorID, routingKey string, now time.Time) {
	now = now.UTC()
	from := t.status
	t.status = to
	t.Touch(now)
	t.AddDomainEvent(newStatusChanged(t, routingKey, actorID, from, now))
}
