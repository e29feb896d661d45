package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// RuleRepository 排班规则仓储
type RuleRepository struct {
	db DB
}

// NewRuleRepository 创建排班规则仓储
func NewRuleRepository(db DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// Create 创建排班规则
func (r *RuleRepository) Create(ctx context.Context, rule *model.ShiftRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	toJSON, _ := json.Marshal(rule.ToShiftIDs)

	query := `
		INSERT INTO shift_rules (
			id, kind, name, from_shift_id, to_shift_ids, follow_up_shift_id,
			same_day, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.Kind, rule.Name, rule.FromShiftID, toJSON,
		rule.FollowUpShiftID, rule.SameDay, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建排班规则失败: %w", err)
	}
	return nil
}

// List 查询全部排班规则
func (r *RuleRepository) List(ctx context.Context) ([]*model.ShiftRule, error) {
	query := `
		SELECT id, kind, name, from_shift_id, to_shift_ids, follow_up_shift_id,
			same_day, created_at, updated_at
		FROM shift_rules
		WHERE deleted_at IS NULL
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询排班规则失败: %w", err)
	}
	defer rows.Close()

	var rules []*model.ShiftRule
	for rows.Next() {
		var rule model.ShiftRule
		var toJSON []byte
		err := rows.Scan(
			&rule.ID, &rule.Kind, &rule.Name, &rule.FromShiftID, &toJSON,
			&rule.FollowUpShiftID, &rule.SameDay, &rule.CreatedAt, &rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描排班规则行失败: %w", err)
		}
		if len(toJSON) > 0 {
			if err := json.Unmarshal(toJSON, &rule.ToShiftIDs); err != nil {
				return nil, fmt.Errorf("解析目标班次失败: %w", err)
			}
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

// Delete 软删除排班规则
func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shift_rules SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除排班规则失败: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("排班规则 %s 不存在", id)
	}
	return nil
}
