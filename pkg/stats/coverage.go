package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	// 整体覆盖率
	TotalSlots      int     `json:"total_slots"`      // 周需求展开后的总名额数
	AssignedSlots   int     `json:"assigned_slots"`   // 已分配名额数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	// 按日期统计
	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`

	// 按班次类型统计
	ShiftTypeCoverage map[string]float64 `json:"shift_type_coverage"`

	// 问题识别
	UncoveredSlots []UncoveredSlot `json:"uncovered_slots"` // 未覆盖名额
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date         string  `json:"date"`
	TotalSlots   int     `json:"total_slots"`
	Assigned     int     `json:"assigned"`
	CoverageRate float64 `json:"coverage_rate"`
	StaffCount   int     `json:"staff_count"`
	TotalHours   float64 `json:"total_hours"`
}

// UncoveredSlot 未覆盖名额
type UncoveredSlot struct {
	ShiftID   uuid.UUID `json:"shift_id"`
	ShiftName string    `json:"shift_name"`
	Date      string    `json:"date"`
	Required  int       `json:"required"`
	Assigned  int       `json:"assigned"`
	Shortage  int       `json:"shortage"`
}

// CoverageAnalyzer 覆盖率分析器
// 按排班窗口逐个工作日展开每个班次类型的周需求，与主排班逐一对照
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 分析日期范围内的覆盖率
// 衔接班不计入名额，周末不计入需求
func (c *CoverageAnalyzer) Analyze(
	startDate, endDate string,
	shiftTypes []*model.ShiftType,
	assignments []*model.ShiftAssignment,
) (*CoverageMetrics, error) {
	start, err := time.Parse(model.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("开始日期格式错误: %w", err)
	}
	end, err := time.Parse(model.DateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("结束日期格式错误: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("结束日期 %s 早于开始日期 %s", endDate, startDate)
	}

	// 主排班按 日期+班次 计数
	primaryCount := make(map[string]map[uuid.UUID]int)
	staffCount := make(map[string]map[uuid.UUID]bool)
	shiftMap := make(map[uuid.UUID]*model.ShiftType)
	for _, s := range shiftTypes {
		shiftMap[s.ID] = s
	}
	for _, a := range assignments {
		if a.IsFollowUp {
			continue
		}
		if primaryCount[a.Date] == nil {
			primaryCount[a.Date] = make(map[uuid.UUID]int)
			staffCount[a.Date] = make(map[uuid.UUID]bool)
		}
		primaryCount[a.Date][a.ShiftID]++
		staffCount[a.Date][a.EmployeeID] = true
	}

	metrics := &CoverageMetrics{
		DailyCoverage:     make(map[string]DayCoverage),
		ShiftTypeCoverage: make(map[string]float64),
	}
	typeTotal := make(map[string]int)
	typeAssigned := make(map[string]int)

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format(model.DateLayout)
		weekday, working := model.WeekdayOf(dateStr)
		if !working {
			continue
		}

		day := DayCoverage{Date: dateStr}
		for _, shift := range shiftTypes {
			need := shift.NeedOn(weekday)
			if need == 0 {
				continue
			}
			assigned := primaryCount[dateStr][shift.ID]
			if assigned > need {
				assigned = need
			}
			day.TotalSlots += need
			day.Assigned += assigned
			day.TotalHours += shift.DurationHours() * float64(assigned)
			typeTotal[shift.Name] += need
			typeAssigned[shift.Name] += assigned

			if assigned < need {
				metrics.UncoveredSlots = append(metrics.UncoveredSlots, UncoveredSlot{
					ShiftID:   shift.ID,
					ShiftName: shift.Name,
					Date:      dateStr,
					Required:  need,
					Assigned:  assigned,
					Shortage:  need - assigned,
				})
			}
		}

		if day.TotalSlots > 0 {
			day.CoverageRate = float64(day.Assigned) / float64(day.TotalSlots) * 100
		} else {
			day.CoverageRate = 100
		}
		day.StaffCount = len(staffCount[dateStr])
		metrics.DailyCoverage[dateStr] = day
		metrics.TotalSlots += day.TotalSlots
		metrics.AssignedSlots += day.Assigned
	}

	if metrics.TotalSlots > 0 {
		metrics.OverallCoverage = float64(metrics.AssignedSlots) / float64(metrics.TotalSlots) * 100
	} else {
		metrics.OverallCoverage = 100
	}
	for name, total := range typeTotal {
		if total > 0 {
			metrics.ShiftTypeCoverage[name] = float64(typeAssigned[name]) / float64(total) * 100
		}
	}

	// 未覆盖名额按日期、班次名排序，保证输出稳定
	sort.Slice(metrics.UncoveredSlots, func(i, j int) bool {
		if metrics.UncoveredSlots[i].Date != metrics.UncoveredSlots[j].Date {
			return metrics.UncoveredSlots[i].Date < metrics.UncoveredSlots[j].Date
		}
		return metrics.UncoveredSlots[i].ShiftName < metrics.UncoveredSlots[j].ShiftName
	})

	return metrics, nil
}
