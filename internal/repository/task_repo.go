package repository

import (
	"context"

	"study_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.StudyTask, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, title, duration_minutes, reward_credits, completed, created_at
		 FROM study_tasks
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 100`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.StudyTask
	for rows.Next() {
		var t domain.StudyTask
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.DurationMinutes, &t.RewardCredits, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.StudyTask) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO study_tasks (user_id, title, duration_minutes, reward_credits)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		t.UserID, t.Title, t.DurationMinutes, t.RewardCredits,
	).Scan(&t.ID, &t.CreatedAt)
}

// Get returns the task only if it belongs to userID.
func (r *TaskRepository) Get(ctx context.Context, userID, taskID int64) (*domain.StudyTask, error) {
	var t domain.StudyTask
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, duration_minutes, reward_credits, completed, created_at
		 FROM study_tasks
		 WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.DurationMinutes, &t.RewardCredits, &t.Completed, &t.CreatedAt)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

// MarkCompleted flips the task to completed and reports whether this call
// was the one that did it. The guard makes the reward single-shot.
func (r *TaskRepository) MarkCompleted(ctx context.Context, userID, taskID int64) (bool, error) {
	res, err := r.db.Exec(ctx,
		`UPDATE study_tasks SET completed = TRUE
		 WHERE id = $1 AND user_id = $2 AND completed = FALSE`,
		taskID, userID,
	)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}
