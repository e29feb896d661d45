// Package scheduler 提供值班排班引擎
//
// 引擎按天、按班次逐个名额贪心指派，依次使用严格、宽松、紧急三级策略，
// 全周期处理完成后执行一次强制衔接规则的补扫。所有未满足的约束都降级为
// 冲突消息，引擎始终产出尽力而为的完整排班。
package scheduler

import (
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// Input 排班输入
type Input struct {
	StartDate      string                             `json:"start_date"` // YYYY-MM-DD
	EndDate        string                             `json:"end_date"`   // YYYY-MM-DD
	Employees      []*model.Employee                  `json:"employees"`
	Teams          []*model.Team                      `json:"teams"`
	ShiftTypes     []*model.ShiftType                 `json:"shift_types"`
	Qualifications []*model.LearningYearQualification `json:"qualifications"`
	Rules          []*model.ShiftRule                 `json:"rules"`

	// 已有分配（含锁定分配），引擎视为已占用且不会改动
	Existing []*model.ShiftAssignment `json:"existing,omitempty"`
}

// Result 排班结果
type Result struct {
	// 全部分配，包含未改动的已有分配、新的主分配与衔接分配
	Assignments []*model.ShiftAssignment `json:"assignments"`

	// 冲突消息，按发生顺序排列
	Conflicts []string `json:"conflicts"`

	Statistics *Statistics   `json:"statistics"`
	Duration   time.Duration `json:"duration"`
}

// Statistics 排班统计
type Statistics struct {
	TotalAssignments int                                `json:"total_assignments"`
	UnassignedShifts int                                `json:"unassigned_shifts"`
	Workloads        map[uuid.UUID]*model.WorkloadStats `json:"workloads"`
}
