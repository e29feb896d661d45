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

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	allowedJSON, _ := json.Marshal(emp.AllowedShifts)
	availabilityJSON, _ := json.Marshal(emp.Availability)

	query := `
		INSERT INTO employees (
			id, name, code, type, trainee_year, grade, team_id,
			target_percent, allowed_shifts, availability, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Code, emp.Type, emp.TraineeYear, emp.Grade, emp.TeamID,
		emp.TargetPercent, allowedJSON, availabilityJSON, emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 按ID查询员工
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := `
		SELECT id, name, code, type, trainee_year, grade, team_id,
			target_percent, allowed_shifts, availability, created_at, updated_at
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	emp, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("员工 %s 不存在", id)
	}
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	return emp, nil
}

// List 查询员工列表
func (r *EmployeeRepository) List(ctx context.Context, filter ListFilter) ([]*model.Employee, error) {
	query := `
		SELECT id, name, code, type, trainee_year, grade, team_id,
			target_percent, allowed_shifts, availability, created_at, updated_at
		FROM employees
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}

	query += " ORDER BY created_at"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询员工列表失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描员工行失败: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// ListByTeam 查询某团队的全部员工
func (r *EmployeeRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*model.Employee, error) {
	query := `
		SELECT id, name, code, type, trainee_year, grade, team_id,
			target_percent, allowed_shifts, availability, created_at, updated_at
		FROM employees
		WHERE team_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("查询团队员工失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描员工行失败: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	emp.UpdatedAt = time.Now()

	allowedJSON, _ := json.Marshal(emp.AllowedShifts)
	availabilityJSON, _ := json.Marshal(emp.Availability)

	query := `
		UPDATE employees SET
			name = $2, code = $3, type = $4, trainee_year = $5, grade = $6,
			team_id = $7, target_percent = $8, allowed_shifts = $9,
			availability = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Code, emp.Type, emp.TraineeYear, emp.Grade,
		emp.TeamID, emp.TargetPercent, allowedJSON, availabilityJSON, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("员工 %s 不存在", emp.ID)
	}
	return nil
}

// Delete 软删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("员工 %s 不存在", id)
	}
	return nil
}

// scanEmployee 扫描员工行
func scanEmployee(row Scanner) (*model.Employee, error) {
	var emp model.Employee
	var allowedJSON, availabilityJSON []byte

	err := row.Scan(
		&emp.ID, &emp.Name, &emp.Code, &emp.Type, &emp.TraineeYear, &emp.Grade,
		&emp.TeamID, &emp.TargetPercent, &allowedJSON, &availabilityJSON,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(allowedJSON) > 0 {
		if err := json.Unmarshal(allowedJSON, &emp.AllowedShifts); err != nil {
			return nil, fmt.Errorf("解析允许班次失败: %w", err)
		}
	}
	if len(availabilityJSON) > 0 {
		if err := json.Unmarshal(availabilityJSON, &emp.Availability); err != nil {
			return nil, fmt.Errorf("解析可用性失败: %w", err)
		}
	}
	return &emp, nil
}
