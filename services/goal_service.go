package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/goal"
)

type GoalService struct {
	db *pgxpool.Pool
}

func NewGoalService(db *pgxpool.Pool) *GoalService {
	return &GoalService{db: db}
}

const goalColumns = `id, user_id, title, description, target_date, status, created_at, updated_at`

func scanGoal(row pgx.Row) (*goal.Goal, error) {
	var g goal.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.TargetDate,
		&g.Status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GoalService) CreateGoal(ctx context.Context, clerkID string, req *goal.CreateGoalRequest) (*goal.Goal, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	g, err := scanGoal(s.db.QueryRow(ctx, `
		INSERT INTO personal_goals (id, user_id, title, description, target_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+goalColumns,
		uuid.New(), userID, req.Title, req.Description, req.TargetDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) ListGoals(ctx context.Context, clerkID string) ([]goal.Goal, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+goalColumns+` FROM personal_goals
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []goal.Goal{}
	for rows.Next() {
		var g goal.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.TargetDate,
			&g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

func (s *GoalService) GetGoal(ctx context.Context, clerkID string, goalID uuid.UUID) (*goal.Goal, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	g, err := scanGoal(s.db.QueryRow(ctx, `
		SELECT `+goalColumns+` FROM personal_goals
		WHERE id = $1 AND user_id = $2`, goalID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) UpdateGoal(ctx context.Context, clerkID string, goalID uuid.UUID, req *goal.UpdateGoalRequest) (*goal.Goal, error) {
	current, err := s.GetGoal(ctx, clerkID, goalID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		current.Title = *req.Title
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.TargetDate != nil {
		current.TargetDate = req.TargetDate
	}
	if req.Status != nil {
		switch *req.Status {
		case goal.StatusNotStarted, goal.StatusInProgress, goal.StatusDone:
			current.Status = *req.Status
		default:
			return nil, fmt.Errorf("%w: invalid goal status %q", ErrValidation, *req.Status)
		}
	}

	g, err := scanGoal(s.db.QueryRow(ctx, `
		UPDATE personal_goals
		SET title = $1, description = $2, target_date = $3, status = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING `+goalColumns,
		current.Title, current.Description, current.TargetDate, current.Status,
		goalID, current.UserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, clerkID string, goalID uuid.UUID) error {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`DELETE FROM personal_goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}
