package queries

import (
	"context"
	"sort"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
)

// MemberScore is one member's contribution to a team total.
type MemberScore struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	MonthlyScore  int    `json:"monthly_score"`
	MonthlyTarget int    `json:"monthly_target"`
	Productivity  int    `json:"productivity"`
}

// TeamScore is the derived total of a team for one month.
type TeamScore struct {
	TeamID     string        `json:"team_id"`
	TeamName   string        `json:"team_name"`
	Month      string        `json:"month"`
	TotalScore int           `json:"total_score"`
	Members    []MemberScore `json:"members"`
}

// GetTeamScoreQuery selects the team and month. An empty month means the current one.
type GetTeamScoreQuery struct {
	TeamID string
	Month  string
}

// GetTeamScoreHandler handles the GetTeamScoreQuery.
type GetTeamScoreHandler struct {
	taskRepo task.Repository
	userRepo member.UserRepository
	teamRepo member.TeamRepository
	clock    sharedApplication.Clock
}

// NewGetTeamScoreHandler creates a new GetTeamScoreHandler.
func NewGetTeamScoreHandler(taskRepo task.Repository, userRepo member.UserRepository, teamRepo member.TeamRepository, clock sharedApplication.Clock) *GetTeamScoreHandler {
	return &GetTeamScoreHandler{
		taskRepo: taskRepo,
		userRepo: userRepo,
		teamRepo: teamRepo,
		clock:    clock,
	}
}

// Handle executes the GetTeamScoreQuery.
func (h *GetTeamScoreHandler) Handle(ctx context.Context, query GetTeamScoreQuery) (*TeamScore, error) {
	month, err := resolveMonth(query.Month, h.clock)
	if err != nil {
		return nil, err
	}

	team, err := h.teamRepo.FindByID(ctx, query.TeamID)
	if err != nil {
		return nil, err
	}
	members, err := h.userRepo.FindByTeam(ctx, team.ID())
	if err != nil {
		return nil, err
	}

	completed := task.StatusCompleted
	tasks, err := h.taskRepo.List(ctx, task.Filter{Status: &completed, CompletedIn: &month})
	if err != nil {
		return nil, err
	}
	completions := completionsOf(tasks)

	memberIDs := make([]string, 0, len(members))
	scores := make([]MemberScore, 0, len(members))
	for _, u := range members {
		memberIDs = append(memberIDs, u.ID())
		score := scoring.MonthlyScore(completions, u.ID(), month)
		productivity, err := scoring.Productivity(score, u.MonthlyTarget())
		if err != nil {
			return nil, err
		}
		scores = append(scores, MemberScore{
			UserID:        u.ID(),
			Name:          u.Name(),
			Role:          string(u.Role()),
			MonthlyScore:  score,
			MonthlyTarget: u.MonthlyTarget(),
			Productivity:  productivity,
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].MonthlyScore != scores[j].MonthlyScore {
			return scores[i].MonthlyScore > scores[j].MonthlyScore
		}
		return scores[i].Name < scores[j].Name
	})

	return &TeamScore{
		TeamID:     team.ID(),
		TeamName:   team.Name(),
		Month:      month.String(),
		TotalScore: scoring.TeamTotalScore(memberIDs, completions, month),
		Members:    scores,
	}, nil
}
