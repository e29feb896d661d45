package scheduler

import (
	"github.com/zhiban/zhiban/pkg/model"
)

// noonMinute 上下午分界（12:00）
const noonMinute = 12 * 60

// IsAvailable 检查员工在某日期能否执勤某班次
//
// 日期落在周六周日时一律视为不可用。相关半日时段仅在显式标记为
// false 时才判定不可用：班次在 12:00 前开始需要当日上午时段，
// 在 12:00 及之后开始或结束需要当日下午时段。跨午夜班次在次日
// 仍为工作日且结束时刻早于正午时，额外需要次日上午时段。
func IsAvailable(emp *model.Employee, date string, shift *model.ShiftType) bool {
	day, ok := model.WeekdayOf(date)
	if !ok {
		return false
	}

	start := model.MinutesOfDay(shift.StartTime)
	end := model.MinutesOfDay(shift.EndTime)

	if start < noonMinute {
		if !emp.AvailableAt(model.AvailabilitySlot{Day: day, Half: model.HalfAM}) {
			return false
		}
	}
	if start >= noonMinute || end >= noonMinute {
		if !emp.AvailableAt(model.AvailabilitySlot{Day: day, Half: model.HalfPM}) {
			return false
		}
	}

	// 跨午夜班次延伸到次日上午
	if end < start && end < noonMinute {
		if nextDay, ok := model.WeekdayOf(model.NextDate(date)); ok {
			if !emp.AvailableAt(model.AvailabilitySlot{Day: nextDay, Half: model.HalfAM}) {
				return false
			}
		}
	}

	return true
}
