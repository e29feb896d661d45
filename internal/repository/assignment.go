package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// AssignmentRepository 排班分配仓储
type AssignmentRepository struct {
	db DB
}

// NewAssignmentRepository 创建排班分配仓储
func NewAssignmentRepository(db DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create 创建排班分配
func (r *AssignmentRepository) Create(ctx context.Context, a *model.ShiftAssignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query := `
		INSERT INTO shift_assignments (id, employee_id, shift_id, date, locked, is_follow_up)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.EmployeeID, a.ShiftID, a.Date, a.Locked, a.IsFollowUp,
	)
	if err != nil {
		return fmt.Errorf("创建排班分配失败: %w", err)
	}
	return nil
}

// SaveAll 在单个事务中批量保存排班结果
func (r *AssignmentRepository) SaveAll(ctx context.Context, tx *sql.Tx, assignments []*model.ShiftAssignment) error {
	query := `
		INSERT INTO shift_assignments (id, employee_id, shift_id, date, locked, is_follow_up)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	for _, a := range assignments {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if _, err := tx.ExecContext(ctx, query,
			a.ID, a.EmployeeID, a.ShiftID, a.Date, a.Locked, a.IsFollowUp,
		); err != nil {
			return fmt.Errorf("保存排班分配 %s 失败: %w", a.ID, err)
		}
	}
	return nil
}

// PlanStore 排班运行结果落库
// 排班生成请求返回前，在单个事务中写入全部分配
type PlanStore struct {
	runner TxRunner
	repo   *AssignmentRepository
}

// NewPlanStore 创建排班结果存储
func NewPlanStore(runner TxRunner, repo *AssignmentRepository) *PlanStore {
	return &PlanStore{runner: runner, repo: repo}
}

// Save 保存一次排班运行的全部分配
func (s *PlanStore) Save(ctx context.Context, assignments []*model.ShiftAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return s.runner.Transaction(ctx, func(tx *sql.Tx) error {
		return s.repo.SaveAll(ctx, tx, assignments)
	})
}

// ListByDateRange 查询日期范围内的排班分配
func (r *AssignmentRepository) ListByDateRange(ctx context.Context, startDate, endDate string) ([]*model.ShiftAssignment, error) {
	query := `
		SELECT id, employee_id, shift_id, date, locked, is_follow_up
		FROM shift_assignments
		WHERE date >= $1 AND date <= $2
		ORDER BY date, shift_id
	`

	rows, err := r.db.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询排班分配失败: %w", err)
	}
	defer rows.Close()

	var assignments []*model.ShiftAssignment
	for rows.Next() {
		var a model.ShiftAssignment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ShiftID, &a.Date, &a.Locked, &a.IsFollowUp); err != nil {
			return nil, fmt.Errorf("扫描排班分配行失败: %w", err)
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}

// ListLocked 查询日期范围内的锁定分配
// 用于排班前预装引擎输入，使锁定班次不被重复指派
func (r *AssignmentRepository) ListLocked(ctx context.Context, startDate, endDate string) ([]*model.ShiftAssignment, error) {
	query := `
		SELECT id, employee_id, shift_id, date, locked, is_follow_up
		FROM shift_assignments
		WHERE date >= $1 AND date <= $2 AND locked = TRUE
		ORDER BY date, shift_id
	`

	rows, err := r.db.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询锁定分配失败: %w", err)
	}
	defer rows.Close()

	var assignments []*model.ShiftAssignment
	for rows.Next() {
		var a model.ShiftAssignment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ShiftID, &a.Date, &a.Locked, &a.IsFollowUp); err != nil {
			return nil, fmt.Errorf("扫描锁定分配行失败: %w", err)
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}

// SetLocked 切换分配的锁定状态
func (r *AssignmentRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	query := `UPDATE shift_assignments SET locked = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, locked)
	if err != nil {
		return fmt.Errorf("更新锁定状态失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("排班分配 %s 不存在", id)
	}
	return nil
}

// Delete 删除排班分配
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM shift_assignments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("删除排班分配失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("排班分配 %s 不存在", id)
	}
	return nil
}
