package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/trainer"
	"fitQuestAPI/internal/user"
)

// trainerDiscountPercent is the flat coin discount applied to every
// trainer purchase.
const trainerDiscountPercent = 10

type TrainerService struct {
	db *pgxpool.Pool
}

func NewTrainerService(db *pgxpool.Pool) *TrainerService {
	return &TrainerService{db: db}
}

const trainerColumns = `id, name, specialization, experience, availability, bio, profile_image, contact_info, amount, created_at`

func scanTrainer(row pgx.Row) (*trainer.Trainer, error) {
	var t trainer.Trainer
	err := row.Scan(&t.ID, &t.Name, &t.Specialization, &t.Experience, &t.Availability,
		&t.Bio, &t.ProfileImage, &t.ContactInfo, &t.Amount, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func validateTrainerRequest(req *trainer.UpsertTrainerRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(req.Specialization) == "" {
		return fmt.Errorf("%w: specialization is required", ErrValidation)
	}
	if req.Experience < 0 {
		return fmt.Errorf("%w: experience cannot be negative", ErrValidation)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return nil
}

func (s *TrainerService) CreateTrainer(ctx context.Context, clerkID string, req *trainer.UpsertTrainerRequest) (*trainer.Trainer, error) {
	role, err := callerRole(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if role != user.RoleAdmin {
		return nil, ErrForbidden
	}
	if err := validateTrainerRequest(req); err != nil {
		return nil, err
	}

	t, err := scanTrainer(s.db.QueryRow(ctx, `
		INSERT INTO trainers (id, name, specialization, experience, availability, bio, profile_image, contact_info, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+trainerColumns,
		uuid.New(), req.Name, req.Specialization, req.Experience, req.Availability,
		req.Bio, req.ProfileImage, req.ContactInfo, req.Amount))
	if err != nil {
		return nil, fmt.Errorf("failed to create trainer: %w", err)
	}
	return t, nil
}

func (s *TrainerService) ListTrainers(ctx context.Context) ([]trainer.Trainer, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+trainerColumns+` FROM trainers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trainers: %w", err)
	}
	defer rows.Close()

	trainers := []trainer.Trainer{}
	for rows.Next() {
		var t trainer.Trainer
		if err := rows.Scan(&t.ID, &t.Name, &t.Specialization, &t.Experience, &t.Availability,
			&t.Bio, &t.ProfileImage, &t.ContactInfo, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trainer: %w", err)
		}
		trainers = append(trainers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trainers: %w", err)
	}
	return trainers, nil
}

func (s *TrainerService) GetTrainer(ctx context.Context, trainerID uuid.UUID) (*trainer.Trainer, error) {
	t, err := scanTrainer(s.db.QueryRow(ctx,
		`SELECT `+trainerColumns+` FROM trainers WHERE id = $1`, trainerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, fmt.Errorf("failed to get trainer: %w", err)
	}
	return t, nil
}

func (s *TrainerService) UpdateTrainer(ctx context.Context, clerkID string, trainerID uuid.UUID, req *trainer.UpsertTrainerRequest) (*trainer.Trainer, error) {
	role, err := callerRole(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if role != user.RoleAdmin {
		return nil, ErrForbidden
	}
	if err := validateTrainerRequest(req); err != nil {
		return nil, err
	}

	t, err := scanTrainer(s.db.QueryRow(ctx, `
		UPDATE trainers
		SET name = $1, specialization = $2, experience = $3, availability = $4,
		    bio = $5, profile_image = $6, contact_info = $7, amount = $8
		WHERE id = $9
		RETURNING `+trainerColumns,
		req.Name, req.Specialization, req.Experience, req.Availability,
		req.Bio, req.ProfileImage, req.ContactInfo, req.Amount, trainerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, fmt.Errorf("failed to update trainer: %w", err)
	}
	return t, nil
}

func (s *TrainerService) DeleteTrainer(ctx context.Context, clerkID string, trainerID uuid.UUID) error {
	role, err := callerRole(ctx, s.db, clerkID)
	if err != nil {
		return err
	}
	if role != user.RoleAdmin {
		return ErrForbidden
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM trainers WHERE id = $1`, trainerID)
	if err != nil {
		return fmt.Errorf("failed to delete trainer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTrainerNotFound
	}
	return nil
}

// PurchaseTrainer records the trainer purchase. Coins never pay for the
// trainer itself, they only fund a flat discount: when the balance covers
// 10% of the price that amount is deducted and knocked off the final
// price, otherwise the purchase proceeds at full price with the balance
// untouched. The balance can never go negative and a short balance never
// blocks the purchase. Read and deduction happen in one transaction
// against a locked user row.
func (s *TrainerService) PurchaseTrainer(ctx context.Context, clerkID string, trainerID uuid.UUID) (*trainer.PurchaseResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var amount int
	err = tx.QueryRow(ctx, `SELECT amount FROM trainers WHERE id = $1`, trainerID).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, fmt.Errorf("failed to get trainer: %w", err)
	}

	var userID uuid.UUID
	var coins int
	err = tx.QueryRow(ctx,
		`SELECT id, coins FROM users WHERE clerk_id = $1 FOR UPDATE`, clerkID).
		Scan(&userID, &coins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	discount := amount * trainerDiscountPercent / 100
	finalPrice := amount
	remaining := coins
	if coins >= discount {
		finalPrice = amount - discount
		remaining = coins - discount
	} else {
		discount = 0
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET coins = $1, trainer_purchased = TRUE, updated_at = NOW()
		WHERE id = $2`, remaining, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to charge user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	return &trainer.PurchaseResult{
		TrainerID:      trainerID,
		OriginalPrice:  amount,
		Discount:       discount,
		FinalPrice:     finalPrice,
		CoinsRemaining: remaining,
	}, nil
}
