package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// ShiftTypeRepository 班次类型仓储
type ShiftTypeRepository struct {
	db DB
}

// NewShiftTypeRepository 创建班次类型仓储
func NewShiftTypeRepository(db DB) *ShiftTypeRepository {
	return &ShiftTypeRepository{db: db}
}

// Create 创建班次类型
func (r *ShiftTypeRepository) Create(ctx context.Context, shift *model.ShiftType) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	now := time.Now()
	shift.CreatedAt = now
	shift.UpdatedAt = now

	needsJSON, _ := json.Marshal(shift.WeeklyNeeds)

	query := `
		INSERT INTO shift_types (id, name, start_time, end_time, weekly_needs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		shift.ID, shift.Name, shift.StartTime, shift.EndTime, needsJSON,
		shift.CreatedAt, shift.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建班次类型失败: %w", err)
	}
	return nil
}

// GetByID 按ID查询班次类型
func (r *ShiftTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ShiftType, error) {
	query := `
		SELECT id, name, start_time, end_time, weekly_needs, created_at, updated_at
		FROM shift_types
		WHERE id = $1 AND deleted_at IS NULL
	`

	shift, err := scanShiftType(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("班次类型 %s 不存在", id)
	}
	if err != nil {
		return nil, fmt.Errorf("查询班次类型失败: %w", err)
	}
	return shift, nil
}

// List 查询全部班次类型
func (r *ShiftTypeRepository) List(ctx context.Context) ([]*model.ShiftType, error) {
	query := `
		SELECT id, name, start_time, end_time, weekly_needs, created_at, updated_at
		FROM shift_types
		WHERE deleted_at IS NULL
		ORDER BY start_time, created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询班次类型列表失败: %w", err)
	}
	defer rows.Close()

	var shifts []*model.ShiftType
	for rows.Next() {
		shift, err := scanShiftType(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描班次类型行失败: %w", err)
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

// Update 更新班次类型
func (r *ShiftTypeRepository) Update(ctx context.Context, shift *model.ShiftType) error {
	shift.UpdatedAt = time.Now()

	needsJSON, _ := json.Marshal(shift.WeeklyNeeds)

	query := `
		UPDATE shift_types SET name = $2, start_time = $3, end_time = $4,
			weekly_needs = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		shift.ID, shift.Name, shift.StartTime, shift.EndTime, needsJSON, shift.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新班次类型失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("班次类型 %s 不存在", shift.ID)
	}
	return nil
}

// Delete 软删除班次类型
func (r *ShiftTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shift_types SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除班次类型失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("班次类型 %s 不存在", id)
	}
	return nil
}

// scanShiftType 扫描班次类型行
func scanShiftType(row Scanner) (*model.ShiftType, error) {
	var shift model.ShiftType
	var needsJSON []byte

	err := row.Scan(
		&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime, &needsJSON,
		&shift.CreatedAt, &shift.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(needsJSON) > 0 {
		if err := json.Unmarshal(needsJSON, &shift.WeeklyNeeds); err != nil {
			return nil, fmt.Errorf("解析每周需求失败: %w", err)
		}
	}
	return &shift, nil
}
