package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
)

// strategy 指派策略，按严格程度降级
type strategy int

const (
	strategyStrict    strategy = iota // 资质 + 可用性 + 规则
	strategyRelaxed                   // 资质 + 可用性
	strategyEmergency                 // 仅资质，记录违规警告
)

// Engine 排班引擎
// 单实例单线程，一次 Plan 对应一次完整的排班运行；
// 并发排班需各自持有独立的引擎实例与输入副本。
type Engine struct {
	in      *Input
	store   *AssignmentStore
	tracker *WorkloadTracker

	shiftMap    map[uuid.UUID]*model.ShiftType
	empMap      map[uuid.UUID]*model.Employee
	qualsByYear map[int]*model.LearningYearQualification

	conflicts []string
	log       *logger.EngineLogger
}

// New 创建排班引擎
// 工作量跟踪器以已有分配初始化，使锁定班次计入公平性排序
func New(in *Input) *Engine {
	e := &Engine{
		in:          in,
		store:       NewAssignmentStore(in.Existing),
		tracker:     NewWorkloadTracker(in.Employees, in.Teams),
		shiftMap:    make(map[uuid.UUID]*model.ShiftType, len(in.ShiftTypes)),
		empMap:      make(map[uuid.UUID]*model.Employee, len(in.Employees)),
		qualsByYear: make(map[int]*model.LearningYearQualification, len(in.Qualifications)),
		conflicts:   make([]string, 0),
		log:         logger.NewEngineLogger(),
	}

	for _, s := range in.ShiftTypes {
		e.shiftMap[s.ID] = s
	}
	for _, emp := range in.Employees {
		e.empMap[emp.ID] = emp
	}
	for _, q := range in.Qualifications {
		e.qualsByYear[q.Year] = q
	}

	for _, a := range in.Existing {
		e.tracker.Record(a.EmployeeID, e.durationOf(a.ShiftID), a.Date)
	}

	return e
}

// Plan 执行排班
//
// 按日历顺序遍历周期内的每个工作日，班次类型按开始时刻升序处理，
// 每个未满足的名额依次尝试三级策略。全周期处理后执行强制衔接补扫，
// 最后独立重算未指派数并汇总统计。
func (e *Engine) Plan(ctx context.Context) (*Result, error) {
	startedAt := time.Now()

	start, err := time.Parse(model.DateLayout, e.in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("无效的开始日期 %q: %w", e.in.StartDate, err)
	}
	end, err := time.Parse(model.DateLayout, e.in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("无效的结束日期 %q: %w", e.in.EndDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("结束日期 %s 早于开始日期 %s", e.in.EndDate, e.in.StartDate)
	}

	e.log.StartPlan(e.in.StartDate, e.in.EndDate, len(e.in.Employees), len(e.in.ShiftTypes))

	shifts := e.sortedShifts()

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		date := d.Format(model.DateLayout)
		day, ok := model.WeekdayOf(date)
		if !ok {
			continue // 周末不排班
		}

		for _, shift := range shifts {
			needed := shift.NeedOn(day) - e.store.PrimaryCountOn(date, shift.ID)
			for slot := 0; slot < needed; slot++ {
				e.fillSlot(date, shift, slot)
			}
		}
	}

	e.enforceFollowUps()

	result := &Result{
		Assignments: e.store.All(),
		Conflicts:   e.conflicts,
		Statistics: &Statistics{
			TotalAssignments: e.store.Count(),
			UnassignedShifts: e.countUnassigned(start, end),
			Workloads:        e.tracker.Snapshot(),
		},
		Duration: time.Since(startedAt),
	}

	e.log.PlanComplete(result.Statistics.TotalAssignments, result.Statistics.UnassignedShifts,
		len(result.Conflicts), result.Duration)

	return result, nil
}

// fillSlot 为单个名额寻找员工，依次尝试严格、宽松、紧急策略
func (e *Engine) fillSlot(date string, shift *model.ShiftType, slot int) {
	for _, s := range []strategy{strategyStrict, strategyRelaxed, strategyEmergency} {
		if e.tryStrategy(s, date, shift) {
			return
		}
	}

	e.addConflict(fmt.Sprintf("无法指派：%s 于 %s 第 %d 个名额无人可用", shift.Name, date, slot+1))
	e.log.SlotUnassigned(shift.Name, date, slot)
}

// tryStrategy 按工作量升序遍历候选员工，提交首个满足策略要求的分配
func (e *Engine) tryStrategy(s strategy, date string, shift *model.ShiftType) bool {
	for _, emp := range e.tracker.Ordered(e.in.Employees) {
		// 每人每日至多一个主分配，紧急策略同样遵守
		if e.store.HasPrimaryOn(emp.ID, date) {
			continue
		}
		if !IsQualified(emp, shift, e.qualsByYear) {
			continue
		}
		if s != strategyEmergency && !IsAvailable(emp, date, shift) {
			continue
		}
		if s == strategyStrict {
			if reason, violated := e.checkForbiddenSequence(emp, date, shift); violated {
				e.log.RuleConflict(reason)
				continue
			}
		}

		if !e.commit(&model.ShiftAssignment{
			ID:         newAssignmentID(),
			EmployeeID: emp.ID,
			ShiftID:    shift.ID,
			Date:       date,
		}) {
			continue
		}

		if s == strategyEmergency {
			e.addConflict(fmt.Sprintf("紧急指派：员工 %s 于 %s 接下 %s，已跳过可用性与规则检查，可能违反约束",
				emp.Name, date, shift.Name))
			e.log.EmergencyAssignment(emp.Name, shift.Name, date)
		}

		e.attachFollowUp(emp, shift, date)
		return true
	}
	return false
}

// commit 提交分配并同步工作量跟踪
func (e *Engine) commit(a *model.ShiftAssignment) bool {
	if !e.store.Add(a) {
		return false
	}
	e.tracker.Record(a.EmployeeID, e.durationOf(a.ShiftID), a.Date)
	return true
}

// countUnassigned 独立重算未指派名额数
// 重新遍历每个工作日与班次类型，累加 max(0, 需求 − 主分配数)
func (e *Engine) countUnassigned(start, end time.Time) int {
	total := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(model.DateLayout)
		day, ok := model.WeekdayOf(date)
		if !ok {
			continue
		}
		for _, shift := range e.in.ShiftTypes {
			if missing := shift.NeedOn(day) - e.store.PrimaryCountOn(date, shift.ID); missing > 0 {
				total += missing
			}
		}
	}
	return total
}

// sortedShifts 返回按开始时刻升序排列的班次类型
// 并列时保持输入顺序
func (e *Engine) sortedShifts() []*model.ShiftType {
	shifts := make([]*model.ShiftType, len(e.in.ShiftTypes))
	copy(shifts, e.in.ShiftTypes)
	sort.SliceStable(shifts, func(i, j int) bool {
		return model.MinutesOfDay(shifts[i].StartTime) < model.MinutesOfDay(shifts[j].StartTime)
	})
	return shifts
}

// durationOf 返回班次时长，未知班次计为 0
func (e *Engine) durationOf(shiftID uuid.UUID) float64 {
	if shift, ok := e.shiftMap[shiftID]; ok {
		return shift.DurationHours()
	}
	return 0
}

// shiftName 返回班次名称，未知班次退化为 ID
func (e *Engine) shiftName(shiftID uuid.UUID) string {
	if shift, ok := e.shiftMap[shiftID]; ok {
		return shift.Name
	}
	return shiftID.String()
}

// employeeName 返回员工名称，未知员工退化为 ID
func (e *Engine) employeeName(empID uuid.UUID) string {
	if emp, ok := e.empMap[empID]; ok {
		return emp.Name
	}
	return empID.String()
}

// addConflict 按发生顺序记录冲突消息
func (e *Engine) addConflict(msg string) {
	e.conflicts = append(e.conflicts, msg)
}

// newAssignmentID 生成分配ID
func newAssignmentID() uuid.UUID {
	return uuid.New()
}
