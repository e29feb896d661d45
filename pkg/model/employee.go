package model

import (
	"github.com/google/uuid"
)

// EmployeeType 员工类型
type EmployeeType string

const (
	EmployeeRegular EmployeeType = "regular" // 正式员工
	EmployeeTrainee EmployeeType = "trainee" // 学员（按培训年级限制班次资质）
)

// DefaultTargetPercent 缺省目标排班比例
// 员工本人与所属团队均未设置时生效
const DefaultTargetPercent = 100

// Employee 员工
type Employee struct {
	BaseModel
	Name        string       `json:"name" db:"name"`
	Code        string       `json:"code,omitempty" db:"code"`
	Type        EmployeeType `json:"type" db:"type"`
	TraineeYear int          `json:"trainee_year,omitempty" db:"trainee_year"` // 仅学员有意义
	Grade       string       `json:"grade,omitempty" db:"grade"`
	TeamID      uuid.UUID    `json:"team_id" db:"team_id"`

	// 个人目标排班比例，覆盖团队默认值
	TargetPercent *int `json:"target_percent,omitempty" db:"target_percent"`

	// 允许执勤的班次类型
	AllowedShifts []uuid.UUID `json:"allowed_shifts" db:"allowed_shifts"`

	// 周可用性，键为 工作日_半日，缺省视为可用
	Availability map[AvailabilitySlot]bool `json:"availability,omitempty" db:"availability"`
}

// IsTrainee 检查是否为带培训年级的学员
func (e *Employee) IsTrainee() bool {
	return e.Type == EmployeeTrainee && e.TraineeYear > 0
}

// AllowsShift 检查班次类型是否在员工的允许列表中
func (e *Employee) AllowsShift(shiftID uuid.UUID) bool {
	for _, id := range e.AllowedShifts {
		if id == shiftID {
			return true
		}
	}
	return false
}

// AvailableAt 检查某时段是否可用
// 仅显式标记为 false 才视为不可用
func (e *Employee) AvailableAt(slot AvailabilitySlot) bool {
	if v, ok := e.Availability[slot]; ok {
		return v
	}
	return true
}

// EffectiveTargetPercent 计算生效的目标排班比例
// 优先级：个人覆盖值 > 团队默认值 > 全局默认值
func (e *Employee) EffectiveTargetPercent(team *Team) int {
	if e.TargetPercent != nil {
		return *e.TargetPercent
	}
	if team != nil {
		return team.TargetPercent
	}
	return DefaultTargetPercent
}

// Team 团队
type Team struct {
	BaseModel
	Name          string `json:"name" db:"name"`
	TargetPercent int    `json:"target_percent" db:"target_percent"`
}
