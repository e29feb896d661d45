package model

import (
	"github.com/google/uuid"
)

// RuleKind 排班规则类型
type RuleKind string

const (
	// RuleForbiddenSequence 禁止序列：from 班次之后（同日或次日）禁止出现 to 班次
	RuleForbiddenSequence RuleKind = "forbidden_sequence"

	// RuleMandatoryFollowUp 强制衔接：from 班次分配后必须在同日衔接 to 班次
	RuleMandatoryFollowUp RuleKind = "mandatory_follow_up"
)

// ShiftRule 排班规则
type ShiftRule struct {
	BaseModel
	Kind        RuleKind  `json:"kind" db:"kind"`
	Name        string    `json:"name,omitempty" db:"name"`
	FromShiftID uuid.UUID `json:"from_shift_id" db:"from_shift_id"`

	// 禁止序列的目标班次，可为多个
	ToShiftIDs []uuid.UUID `json:"to_shift_ids,omitempty" db:"to_shift_ids"`

	// 强制衔接的目标班次
	FollowUpShiftID uuid.UUID `json:"follow_up_shift_id,omitempty" db:"follow_up_shift_id"`

	// 禁止序列作用于同日；false 时作用于次日
	SameDay bool `json:"same_day" db:"same_day"`
}

// Forbids 检查禁止序列规则是否禁止某目标班次
func (r *ShiftRule) Forbids(shiftID uuid.UUID) bool {
	for _, id := range r.ToShiftIDs {
		if id == shiftID {
			return true
		}
	}
	return false
}

// LearningYearQualification 培训年级资质
// 限定某年级学员允许执勤的班次类型
type LearningYearQualification struct {
	BaseModel
	Year         int         `json:"year" db:"year"`
	ShiftTypeIDs []uuid.UUID `json:"shift_type_ids" db:"shift_type_ids"`

	// 该年级的默认可用性模板，仅供外部构造员工时参考，引擎不读取
	DefaultAvailability map[AvailabilitySlot]bool `json:"default_availability,omitempty" db:"default_availability"`
}

// Allows 检查该年级是否允许某班次类型
func (q *LearningYearQualification) Allows(shiftID uuid.UUID) bool {
	for _, id := range q.ShiftTypeIDs {
		if id == shiftID {
			return true
		}
	}
	return false
}
