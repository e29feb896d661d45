package model

import (
	"github.com/google/uuid"
)

// ShiftType 班次类型定义
type ShiftType struct {
	BaseModel
	Name      string `json:"name" db:"name"`
	StartTime string `json:"start_time" db:"start_time"` // HH:MM
	EndTime   string `json:"end_time" db:"end_time"`     // HH:MM，可跨午夜

	// 每个工作日所需人数，缺省为 0
	WeeklyNeeds map[Weekday]int `json:"weekly_needs" db:"weekly_needs"`
}

// DurationHours 计算班次时长（小时）
// 结束时刻早于开始时刻视为跨午夜班次
func (s *ShiftType) DurationHours() float64 {
	start := MinutesOfDay(s.StartTime)
	end := MinutesOfDay(s.EndTime)
	if end < start {
		end += 24 * 60
	}
	return float64(end-start) / 60.0
}

// IsOvernight 检查是否为跨午夜班次
func (s *ShiftType) IsOvernight() bool {
	return MinutesOfDay(s.EndTime) < MinutesOfDay(s.StartTime)
}

// NeedOn 返回某工作日所需人数
func (s *ShiftType) NeedOn(day Weekday) int {
	return s.WeeklyNeeds[day]
}

// ShiftAssignment 排班分配
// 主分配按 (日期, 班次类型) 独占槽位；衔接分配不占用槽位，
// 可与同日同班次的主分配并存
type ShiftAssignment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	ShiftID    uuid.UUID `json:"shift_id" db:"shift_id"`
	Date       string    `json:"date" db:"date"` // YYYY-MM-DD
	Locked     bool      `json:"locked" db:"locked"`
	IsFollowUp bool      `json:"is_follow_up" db:"is_follow_up"`
}

// IsPrimary 检查是否为主分配
func (a *ShiftAssignment) IsPrimary() bool {
	return !a.IsFollowUp
}

// IsOnDate 检查分配是否在指定日期
func (a *ShiftAssignment) IsOnDate(date string) bool {
	return a.Date == date
}

// WorkloadStats 员工工作量统计
type WorkloadStats struct {
	Hours         float64         `json:"hours"`
	ShiftCount    int             `json:"shift_count"`
	TargetPercent int             `json:"target_percent"`
	WorkedDates   map[string]bool `json:"worked_dates"`
}
