package service

import (
	"context"

	"study_webapp/internal/domain"
	"study_webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskService pays out credits for completed timed tasks.
type TaskService struct {
	tasks  *repository.TaskRepository
	ledger *CreditLedger
}

func NewTaskService(db *pgxpool.Pool, ledger *CreditLedger) *TaskService {
	return &TaskService{
		tasks:  repository.NewTaskRepository(db),
		ledger: ledger,
	}
}

func (s *TaskService) List(ctx context.Context, userID int64) ([]*domain.StudyTask, error) {
	return s.tasks.ListByUser(ctx, userID)
}

func (s *TaskService) Create(ctx context.Context, t *domain.StudyTask) error {
	return s.tasks.Create(ctx, t)
}

// Complete marks the task done and grants its reward. The completion flag
// flips at most once, so repeat calls cannot double-pay.
func (s *TaskService) Complete(ctx context.Context, userID, taskID int64) (*domain.StudyTask, int64, error) {
	task, err := s.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return nil, 0, err
	}

	first, err := s.tasks.MarkCompleted(ctx, userID, taskID)
	if err != nil {
		return nil, 0, err
	}
	if !first {
		return task, 0, domain.ErrAlreadyCompleted
	}

	var newBalance int64
	if task.RewardCredits > 0 {
		newBalance, err = s.ledger.Earn(ctx, userID, task.RewardCredits, domain.TxTaskReward,
			map[string]any{"task_id": taskID, "title": task.Title})
		if err != nil {
			return nil, 0, err
		}
	}
	task.Completed = true
	return task, newBalance, nil
}
