// Package model 定义值班排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Weekday 工作日（仅周一至周五参与排班）
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

// Weekdays 按周顺序排列的全部工作日
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// weekdayNames time.Weekday 到工作日的映射，周六周日不在其中
var weekdayNames = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
}

// DateLayout 日期交换格式
const DateLayout = "2006-01-02"

// ClockLayout 时刻交换格式
const ClockLayout = "15:04"

// WeekdayOf 将日期映射为工作日
// 周六、周日或无法解析的日期返回 ok=false
func WeekdayOf(date string) (Weekday, bool) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", false
	}
	wd, ok := weekdayNames[t.Weekday()]
	return wd, ok
}

// NextDate 返回后一天日期
func NextDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(DateLayout)
}

// PrevDate 返回前一天日期
func PrevDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}

// MinutesOfDay 将 HH:MM 转换为当日分钟数
// 无法解析的时刻返回 0，上游负责输入校验
func MinutesOfDay(clock string) int {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// DayHalf 半日时段
type DayHalf string

const (
	HalfAM DayHalf = "AM" // 上午（12:00 之前）
	HalfPM DayHalf = "PM" // 下午（含 12:00）
)

// AvailabilitySlot 可用性时段：工作日 × 半日
type AvailabilitySlot struct {
	Day  Weekday
	Half DayHalf
}

// String 返回 "monday_AM" 形式的键
func (s AvailabilitySlot) String() string {
	return string(s.Day) + "_" + string(s.Half)
}

// MarshalText 实现 encoding.TextMarshaler，用于 JSON map 键
func (s AvailabilitySlot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (s *AvailabilitySlot) UnmarshalText(text []byte) error {
	slot, err := ParseAvailabilitySlot(string(text))
	if err != nil {
		return err
	}
	*s = slot
	return nil
}

// ParseAvailabilitySlot 解析 "monday_AM" 形式的键
func ParseAvailabilitySlot(key string) (AvailabilitySlot, error) {
	for _, day := range Weekdays {
		for _, half := range []DayHalf{HalfAM, HalfPM} {
			if key == string(day)+"_"+string(half) {
				return AvailabilitySlot{Day: day, Half: half}, nil
			}
		}
	}
	return AvailabilitySlot{}, fmt.Errorf("无效的可用性时段键: %s", key)
}
