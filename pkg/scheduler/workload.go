package scheduler

import (
	"sort"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// WorkloadTracker 员工工作量跟踪器
// 仅在分配提交路径上更新，状态可由空跟踪器重放分配存储推导
type WorkloadTracker struct {
	stats map[uuid.UUID]*model.WorkloadStats
}

// NewWorkloadTracker 创建工作量跟踪器
// 目标比例取 个人覆盖值 > 团队默认值 > 全局默认值
func NewWorkloadTracker(employees []*model.Employee, teams []*model.Team) *WorkloadTracker {
	teamMap := make(map[uuid.UUID]*model.Team, len(teams))
	for _, t := range teams {
		teamMap[t.ID] = t
	}

	stats := make(map[uuid.UUID]*model.WorkloadStats, len(employees))
	for _, emp := range employees {
		stats[emp.ID] = &model.WorkloadStats{
			TargetPercent: emp.EffectiveTargetPercent(teamMap[emp.TeamID]),
			WorkedDates:   make(map[string]bool),
		}
	}
	return &WorkloadTracker{stats: stats}
}

// Record 记录一次分配提交
// 衔接分配同样计入工时与班次数
func (t *WorkloadTracker) Record(empID uuid.UUID, hours float64, date string) {
	ws, ok := t.stats[empID]
	if !ok {
		ws = &model.WorkloadStats{
			TargetPercent: model.DefaultTargetPercent,
			WorkedDates:   make(map[string]bool),
		}
		t.stats[empID] = ws
	}
	ws.Hours += hours
	ws.ShiftCount++
	ws.WorkedDates[date] = true
}

// Get 返回员工的工作量统计
func (t *WorkloadTracker) Get(empID uuid.UUID) *model.WorkloadStats {
	return t.stats[empID]
}

// Ordered 返回按工作量升序排列的员工
// 先比班次数再比工时，并列时保持输入顺序以保证结果可复现
func (t *WorkloadTracker) Ordered(employees []*model.Employee) []*model.Employee {
	ordered := make([]*model.Employee, len(employees))
	copy(ordered, employees)

	load := func(id uuid.UUID) (int, float64) {
		if ws := t.stats[id]; ws != nil {
			return ws.ShiftCount, ws.Hours
		}
		return 0, 0
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		ci, hi := load(ordered[i].ID)
		cj, hj := load(ordered[j].ID)
		if ci != cj {
			return ci < cj
		}
		return hi < hj
	})
	return ordered
}

// Snapshot 返回全部工作量统计
func (t *WorkloadTracker) Snapshot() map[uuid.UUID]*model.WorkloadStats {
	return t.stats
}
