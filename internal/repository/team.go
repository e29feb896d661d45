package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// TeamRepository 团队仓储
type TeamRepository struct {
	db DB
}

// NewTeamRepository 创建团队仓储
func NewTeamRepository(db DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create 创建团队
func (r *TeamRepository) Create(ctx context.Context, team *model.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	now := time.Now()
	team.CreatedAt = now
	team.UpdatedAt = now

	query := `
		INSERT INTO teams (id, name, target_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		team.ID, team.Name, team.TargetPercent, team.CreatedAt, team.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建团队失败: %w", err)
	}
	return nil
}

// GetByID 按ID查询团队
func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	query := `
		SELECT id, name, target_percent, created_at, updated_at
		FROM teams
		WHERE id = $1 AND deleted_at IS NULL
	`

	var team model.Team
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.TargetPercent, &team.CreatedAt, &team.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("团队 %s 不存在", id)
	}
	if err != nil {
		return nil, fmt.Errorf("查询团队失败: %w", err)
	}
	return &team, nil
}

// List 查询全部团队
func (r *TeamRepository) List(ctx context.Context) ([]*model.Team, error) {
	query := `
		SELECT id, name, target_percent, created_at, updated_at
		FROM teams
		WHERE deleted_at IS NULL
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询团队列表失败: %w", err)
	}
	defer rows.Close()

	var teams []*model.Team
	for rows.Next() {
		var team model.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.TargetPercent, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描团队行失败: %w", err)
		}
		teams = append(teams, &team)
	}
	return teams, rows.Err()
}

// Update 更新团队
func (r *TeamRepository) Update(ctx context.Context, team *model.Team) error {
	team.UpdatedAt = time.Now()

	query := `
		UPDATE teams SET name = $2, target_percent = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, team.ID, team.Name, team.TargetPercent, team.UpdatedAt)
	if err != nil {
		return fmt.Errorf("更新团队失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("团队 %s 不存在", team.ID)
	}
	return nil
}

// Delete 软删除团队
func (r *TeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE teams SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除团队失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("团队 %s 不存在", id)
	}
	return nil
}
