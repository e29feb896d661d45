// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// FairnessMetrics 工作量公平性指标
type FairnessMetrics struct {
	// 工时公平性
	WorkloadGini        float64 `json:"workload_gini"`          // 工时基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance    float64 `json:"workload_variance"`      // 工时方差
	WorkloadStdDev      float64 `json:"workload_std_dev"`       // 工时标准差
	AvgHoursPerEmployee float64 `json:"avg_hours_per_employee"` // 人均工时
	MaxHours            float64 `json:"max_hours"`              // 最大工时
	MinHours            float64 `json:"min_hours"`              // 最小工时
	HoursRange          float64 `json:"hours_range"`            // 工时极差

	// 班次公平性
	ShiftCountGini float64 `json:"shift_count_gini"` // 班次数基尼系数
	OvernightGini  float64 `json:"overnight_gini"`   // 跨夜班分配基尼系数

	// 员工级别统计
	EmployeeStats []EmployeeStat `json:"employee_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 综合公平性评分 (0-100)
}

// EmployeeStat 员工统计
type EmployeeStat struct {
	EmployeeID      uuid.UUID `json:"employee_id"`
	EmployeeName    string    `json:"employee_name"`
	TotalHours      float64   `json:"total_hours"`
	ShiftCount      int       `json:"shift_count"`
	FollowUpCount   int       `json:"follow_up_count"`
	OvernightShifts int       `json:"overnight_shifts"`
	TargetPercent   int       `json:"target_percent"`
	Deviation       float64   `json:"deviation"` // 与目标调整后平均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班公平性
// 工时来自班次时长，跨夜班按跨日计算
func (f *FairnessAnalyzer) Analyze(
	assignments []*model.ShiftAssignment,
	employees []*model.Employee,
	teams []*model.Team,
	shiftTypes []*model.ShiftType,
) *FairnessMetrics {
	if len(assignments) == 0 || len(employees) == 0 {
		return &FairnessMetrics{OverallFairnessScore: 100}
	}

	teamMap := make(map[uuid.UUID]*model.Team)
	for _, t := range teams {
		teamMap[t.ID] = t
	}
	empMap := make(map[uuid.UUID]*model.Employee)
	for _, e := range employees {
		empMap[e.ID] = e
	}
	shiftMap := make(map[uuid.UUID]*model.ShiftType)
	for _, s := range shiftTypes {
		shiftMap[s.ID] = s
	}

	employeeStats := f.calculateEmployeeStats(assignments, empMap, teamMap, shiftMap)

	hours := make([]float64, len(employeeStats))
	counts := make([]float64, len(employeeStats))
	overnights := make([]float64, len(employeeStats))
	for i, stat := range employeeStats {
		hours[i] = stat.TotalHours
		counts[i] = float64(stat.ShiftCount)
		overnights[i] = float64(stat.OvernightShifts)
	}

	avgHours := mean(hours)
	variance := varianceOf(hours, avgHours)
	stdDev := math.Sqrt(variance)
	maxHours, minHours := rangeOf(hours)

	// 偏差相对目标调整后的期望工时：目标 50% 的员工期望工时是平均值的一半
	for i := range employeeStats {
		expected := avgHours * float64(employeeStats[i].TargetPercent) / 100
		if expected > 0 {
			employeeStats[i].Deviation = (employeeStats[i].TotalHours - expected) / expected * 100
		}
	}

	workloadGini := gini(hours)
	countGini := gini(counts)
	overnightGini := gini(overnights)

	return &FairnessMetrics{
		WorkloadGini:         workloadGini,
		WorkloadVariance:     variance,
		WorkloadStdDev:       stdDev,
		AvgHoursPerEmployee:  avgHours,
		MaxHours:             maxHours,
		MinHours:             minHours,
		HoursRange:           maxHours - minHours,
		ShiftCountGini:       countGini,
		OvernightGini:        overnightGini,
		EmployeeStats:        employeeStats,
		OverallFairnessScore: overallScore(workloadGini, countGini, overnightGini, stdDev, avgHours),
	}
}

// calculateEmployeeStats 计算每个员工的统计数据
// 没有任何排班的员工也会出现在结果里，工时为 0
func (f *FairnessAnalyzer) calculateEmployeeStats(
	assignments []*model.ShiftAssignment,
	empMap map[uuid.UUID]*model.Employee,
	teamMap map[uuid.UUID]*model.Team,
	shiftMap map[uuid.UUID]*model.ShiftType,
) []EmployeeStat {
	statMap := make(map[uuid.UUID]*EmployeeStat)
	for id, emp := range empMap {
		statMap[id] = &EmployeeStat{
			EmployeeID:    id,
			EmployeeName:  emp.Name,
			TargetPercent: emp.EffectiveTargetPercent(teamMap[emp.TeamID]),
		}
	}

	for _, a := range assignments {
		stat, ok := statMap[a.EmployeeID]
		if !ok {
			// 分配指向不在名单里的员工，单独记一条
			stat = &EmployeeStat{
				EmployeeID:    a.EmployeeID,
				EmployeeName:  a.EmployeeID.String(),
				TargetPercent: model.DefaultTargetPercent,
			}
			statMap[a.EmployeeID] = stat
		}

		stat.ShiftCount++
		if a.IsFollowUp {
			stat.FollowUpCount++
		}
		if shift, ok := shiftMap[a.ShiftID]; ok {
			stat.TotalHours += shift.DurationHours()
			if shift.IsOvernight() {
				stat.OvernightShifts++
			}
		}
	}

	result := make([]EmployeeStat, 0, len(statMap))
	for _, stat := range statMap {
		result = append(result, *stat)
	}

	// 按工时降序，工时相同按ID，保证结果稳定
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalHours != result[j].TotalHours {
			return result[i].TotalHours > result[j].TotalHours
		}
		return result[i].EmployeeID.String() < result[j].EmployeeID.String()
	})

	return result
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// rangeOf 计算极值
func rangeOf(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}

// overallScore 计算综合公平性评分
func overallScore(workloadGini, countGini, overnightGini, stdDev, avgHours float64) float64 {
	const (
		workloadWeight  = 0.4
		countWeight     = 0.25
		overnightWeight = 0.25
		stdDevWeight    = 0.1
	)

	// 基尼系数转换为分数 (0=100分, 1=0分)
	workloadScore := (1 - workloadGini) * 100
	countScore := (1 - countGini) * 100
	overnightScore := (1 - overnightGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*workloadScore +
		countWeight*countScore +
		overnightWeight*overnightScore +
		stdDevWeight*cvScore

	return math.Max(0, math.Min(100, score))
}
