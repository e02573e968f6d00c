package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"task-manager/internal/model"
)

// TaskCounts is the raw aggregate behind the task statistics.
type TaskCounts struct {
	Total      int64
	Completed  int64
	Overdue    int64
	ByPriority map[model.Priority]int64
}

// StatsRepository runs count queries for a user's tasks.
// Each count is an independent statement; callers get no snapshot guarantee across them.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Counts(ctx context.Context, userID uint, today model.Date) (*TaskCounts, error) {
	owned := sq.Eq{"user_id": userID}
	pending := sq.Eq{"is_completed": false}

	counts := &TaskCounts{ByPriority: make(map[model.Priority]int64, len(model.Priorities))}
	var err error

	if counts.Total, err = r.count(ctx, owned); err != nil {
		return nil, fmt.Errorf("count total: %w", err)
	}
	if counts.Completed, err = r.count(ctx, owned, sq.Eq{"is_completed": true}); err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}
	for _, p := range model.Priorities {
		n, err := r.count(ctx, owned, pending, sq.Eq{"priority": string(p)})
		if err != nil {
			return nil, fmt.Errorf("count %s priority: %w", p, err)
		}
		counts.ByPriority[p] = n
	}
	if counts.Overdue, err = r.count(ctx, owned, pending, sq.Lt{"due_date": today}); err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}

	return counts, nil
}

func (r *StatsRepository) count(ctx context.Context, preds ...sq.Sqlizer) (int64, error) {
	where := sq.And{}
	where = append(where, preds...)
	query, args, err := sq.Select("COUNT(*)").From("tasks").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int64
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}
