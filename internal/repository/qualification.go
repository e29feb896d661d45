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

// QualificationRepository 培训年级资质仓储
type QualificationRepository struct {
	db DB
}

// NewQualificationRepository 创建培训年级资质仓储
func NewQualificationRepository(db DB) *QualificationRepository {
	return &QualificationRepository{db: db}
}

// Upsert 创建或更新某年级的资质
func (r *QualificationRepository) Upsert(ctx context.Context, qual *model.LearningYearQualification) error {
	if qual.ID == uuid.Nil {
		qual.ID = uuid.New()
	}
	now := time.Now()
	if qual.CreatedAt.IsZero() {
		qual.CreatedAt = now
	}
	qual.UpdatedAt = now

	shiftsJSON, _ := json.Marshal(qual.ShiftTypeIDs)
	availabilityJSON, _ := json.Marshal(qual.DefaultAvailability)

	query := `
		INSERT INTO learning_year_qualifications (
			id, year, shift_type_ids, default_availability, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (year) DO UPDATE SET
			shift_type_ids = EXCLUDED.shift_type_ids,
			default_availability = EXCLUDED.default_availability,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		qual.ID, qual.Year, shiftsJSON, availabilityJSON, qual.CreatedAt, qual.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存培训年级资质失败: %w", err)
	}
	return nil
}

// GetByYear 按年级查询资质
func (r *QualificationRepository) GetByYear(ctx context.Context, year int) (*model.LearningYearQualification, error) {
	query := `
		SELECT id, year, shift_type_ids, default_availability, created_at, updated_at
		FROM learning_year_qualifications
		WHERE year = $1
	`

	qual, err := scanQualification(r.db.QueryRowContext(ctx, query, year))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("年级 %d 的资质不存在", year)
	}
	if err != nil {
		return nil, fmt.Errorf("查询培训年级资质失败: %w", err)
	}
	return qual, nil
}

// List 查询全部年级资质
func (r *QualificationRepository) List(ctx context.Context) ([]*model.LearningYearQualification, error) {
	query := `
		SELECT id, year, shift_type_ids, default_availability, created_at, updated_at
		FROM learning_year_qualifications
		ORDER BY year
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询培训年级资质列表失败: %w", err)
	}
	defer rows.Close()

	var quals []*model.LearningYearQualification
	for rows.Next() {
		qual, err := scanQualification(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描资质行失败: %w", err)
		}
		quals = append(quals, qual)
	}
	return quals, rows.Err()
}

// scanQualification 扫描资质行
func scanQualification(row Scanner) (*model.LearningYearQualification, error) {
	var qual model.LearningYearQualification
	var shiftsJSON, availabilityJSON []byte

	err := row.Scan(
		&qual.ID, &qual.Year, &shiftsJSON, &availabilityJSON,
		&qual.CreatedAt, &qual.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(shiftsJSON) > 0 {
		if err := json.Unmarshal(shiftsJSON, &qual.ShiftTypeIDs); err != nil {
			return nil, fmt.Errorf("解析资质班次失败: %w", err)
		}
	}
	if len(availabilityJSON) > 0 {
		if err := json.Unmarshal(availabilityJSON, &qual.DefaultAvailability); err != nil {
			return nil, fmt.Errorf("解析默认可用性失败: %w", err)
		}
	}
	return &qual, nil
}
