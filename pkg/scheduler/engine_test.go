package scheduler

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

func buildShift(name, start, end string, needs map[model.Weekday]int) *model.ShiftType {
	return &model.ShiftType{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		Name:        name,
		StartTime:   start,
		EndTime:     end,
		WeeklyNeeds: needs,
	}
}

func buildEmployee(name string, shifts ...*model.ShiftType) *model.Employee {
	emp := &model.Employee{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		Type:      model.EmployeeRegular,
	}
	for _, s := range shifts {
		emp.AllowedShifts = append(emp.AllowedShifts, s.ID)
	}
	return emp
}

func mustPlan(t *testing.T, in *Input) *Result {
	t.Helper()
	result, err := New(in).Plan(context.Background())
	if err != nil {
		t.Fatalf("排班执行失败: %v", err)
	}
	return result
}

func TestEngine_EmptyNeeds(t *testing.T) {
	shift := buildShift("日班", "08:00", "16:00", nil)
	emp := buildEmployee("张三", shift)

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-05",
		Employees:  []*model.Employee{emp},
		ShiftTypes: []*model.ShiftType{shift},
	})

	if len(result.Assignments) != 0 {
		t.Errorf("零需求应产生零分配，实际 %d", len(result.Assignments))
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("零需求应产生零冲突，实际 %v", result.Conflicts)
	}
	if result.Statistics.UnassignedShifts != 0 {
		t.Errorf("零需求的未指派数 = %d, expected 0", result.Statistics.UnassignedShifts)
	}
}

func TestEngine_SingleMondayNeed(t *testing.T) {
	shift := buildShift("日班", "08:00", "16:00", map[model.Weekday]int{model.Monday: 1})
	emp := buildEmployee("张三", shift)

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01", // 周一
		EndDate:    "2024-01-05", // 周五
		Employees:  []*model.Employee{emp},
		ShiftTypes: []*model.ShiftType{shift},
	})

	if len(result.Assignments) != 1 {
		t.Fatalf("分配数 = %d, expected 1", len(result.Assignments))
	}
	a := result.Assignments[0]
	if a.Date != "2024-01-01" || a.EmployeeID != emp.ID || a.ShiftID != shift.ID {
		t.Errorf("分配内容错误: %+v", a)
	}
	if a.IsFollowUp {
		t.Error("需求指派应为主分配")
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("不应有冲突: %v", result.Conflicts)
	}
	if result.Statistics.UnassignedShifts != 0 {
		t.Errorf("未指派数 = %d, expected 0", result.Statistics.UnassignedShifts)
	}
	if result.Statistics.TotalAssignments != len(result.Assignments) {
		t.Error("统计的分配总数应等于分配列表长度")
	}
}

func TestEngine_MandatoryFollowUp(t *testing.T) {
	early := buildShift("早班", "06:00", "10:00", map[model.Weekday]int{model.Monday: 1})
	late := buildShift("接续班", "10:00", "14:00", nil)
	emp := buildEmployee("张三", early, late)

	rule := &model.ShiftRule{
		BaseModel:       model.BaseModel{ID: uuid.New()},
		Kind:            model.RuleMandatoryFollowUp,
		FromShiftID:     early.ID,
		FollowUpShiftID: late.ID,
	}

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-01",
		Employees:  []*model.Employee{emp},
		ShiftTypes: []*model.ShiftType{early, late},
		Rules:      []*model.ShiftRule{rule},
	})

	if len(result.Assignments) != 2 {
		t.Fatalf("分配数 = %d, expected 2（主分配 + 衔接分配）", len(result.Assignments))
	}

	var followUp *model.ShiftAssignment
	for _, a := range result.Assignments {
		if a.IsFollowUp {
			followUp = a
		}
	}
	if followUp == nil {
		t.Fatal("缺少衔接分配")
	}
	if followUp.ShiftID != late.ID || followUp.Date != "2024-01-01" || followUp.EmployeeID != emp.ID {
		t.Errorf("衔接分配内容错误: %+v", followUp)
	}
}

func TestEngine_FollowUpSweepCoversExisting(t *testing.T) {
	early := buildShift("早班", "06:00", "10:00", nil)
	late := buildShift("接续班", "10:00", "14:00", nil)
	emp := buildEmployee("张三", early, late)

	rule := &model.ShiftRule{
		BaseModel:       model.BaseModel{ID: uuid.New()},
		Kind:            model.RuleMandatoryFollowUp,
		FromShiftID:     early.ID,
		FollowUpShiftID: late.ID,
	}

	// 锁定的已有分配不触发即时衔接，由补扫补齐
	existing := &model.ShiftAssignment{
		ID:         uuid.New(),
		EmployeeID: emp.ID,
		ShiftID:    early.ID,
		Date:       "2024-01-01",
		Locked:     true,
	}

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-01",
		Employees:  []*model.Employee{emp},
		ShiftTypes: []*model.ShiftType{early, late},
		Rules:      []*model.ShiftRule{rule},
		Existing:   []*model.ShiftAssignment{existing},
	})

	if len(result.Assignments) != 2 {
		t.Fatalf("分配数 = %d, expected 2", len(result.Assignments))
	}
	last := result.Assignments[1]
	if !last.IsFollowUp || last.ShiftID != late.ID || last.EmployeeID != emp.ID {
		t.Errorf("补扫应为已有分配补齐衔接班次: %+v", last)
	}
}

func TestEngine_FollowUpSweepConflicts(t *testing.T) {
	early := buildShift("早班", "06:00", "10:00", nil)
	late := buildShift("接续班", "10:00", "14:00", nil)
	emp := buildEmployee("张三", early, late)
	other := buildEmployee("李四", late)

	rule := &model.ShiftRule{
		BaseModel:       model.BaseModel{ID: uuid.New()},
		Kind:            model.RuleMandatoryFollowUp,
		FromShiftID:     early.ID,
		FollowUpShiftID: late.ID,
	}

	// 衔接班次的槽位已被其他员工的主分配占用
	existing := []*model.ShiftAssignment{
		{ID: uuid.New(), EmployeeID: emp.ID, ShiftID: early.ID, Date: "2024-01-01", Locked: true},
		{ID: uuid.New(), EmployeeID: other.ID, ShiftID: late.ID, Date: "2024-01-01", Locked: true},
	}

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-01",
		Employees:  []*model.Employee{emp, other},
		ShiftTypes: []*model.ShiftType{early, late},
		Rules:      []*model.ShiftRule{rule},
		Existing:   existing,
	})

	if len(result.Assignments) != 2 {
		t.Errorf("槽位被占用时不应追加衔接分配，分配数 = %d", len(result.Assignments))
	}
	if len(result.Conflicts) != 1 || !strings.Contains(result.Conflicts[0], "强制衔接失败") {
		t.Errorf("应报告强制衔接失败: %v", result.Conflicts)
	}
}

func TestEngine_ForbiddenSequenceSameDay(t *testing.T) {
	first := buildShift("甲班", "06:00", "10:00", map[model.Weekday]int{model.Monday: 1})
	second := buildShift("乙班", "12:00", "16:00", map[model.Weekday]int{model.Monday: 1})
	emp := buildEmployee("张三", first, second)

	rule := &model.ShiftRule{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		Kind:        model.RuleForbiddenSequence,
		FromShiftID: first.ID,
		ToShiftIDs:  []uuid.UUID{second.ID},
		SameDay:     true,
	}

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-01",
		Employees:  []*model.Employee{emp},
		ShiftTypes: []*model.ShiftType{first, second},
		Rules:      []*model.ShiftRule{rule},
	})

	// 唯一员工已持有当日主分配，乙班无人可用
	if len(result.Assignments) != 1 {
		t.Fatalf("分配数 = %d, expected 1", len(result.Assignments))
	}
	if result.Assignments[0].ShiftID != first.ID {
		t.Error("应只完成甲班指派")
	}
	if len(result.Conflicts) != 1 || !strings.Contains(result.Conflicts[0], "无法指派") {
		t.Errorf("应报告无法指派冲突: %v", result.Conflicts)
	}
	if result.Statistics.UnassignedShifts != 1 {
		t.Errorf("未指派数 = %d, expected 1", result.Statistics.UnassignedShifts)
	}
}

func TestEngine_ForbiddenSequenceNextDay(t *testing.T) {
	night := buildShift("夜班", "22:00", "06:00", map[model.Weekday]int{model.Monday: 1})
	day := buildShift("日班", "08:00", "16:00", map[model.Weekday]int{model.Tuesday: 1})
	onCall := buildEmployee("张三", night, day)
	backup := buildEmployee("李四", day)

	// 夜班次日禁止接日班
	rule := &model.ShiftRule{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		Kind:        model.RuleForbiddenSequence,
		FromShiftID: night.ID,
		ToShiftIDs:  []uuid.UUID{day.ID},
	}

	// 替补周一已有分配，周二两人工作量并列，按输入顺序先试值夜班者，
	// 规则检查必须把他跳过
	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-02",
		Employees:  []*model.Employee{onCall, backup},
		ShiftTypes: []*model.ShiftType{night, day},
		Rules:      []*model.ShiftRule{rule},
		Existing: []*model.ShiftAssignment{
			{ID: uuid.New(), EmployeeID: backup.ID, ShiftID: day.ID, Date: "2024-01-01", Locked: true},
		},
	})

	if len(result.Conflicts) != 0 {
		t.Errorf("有替补员工时不应产生冲突: %v", result.Conflicts)
	}
	for _, a := range result.Assignments {
		if a.Date == "2024-01-02" && a.EmployeeID != backup.ID {
			t.Error("周二日班应指派给未值夜班的员工")
		}
	}
}

func TestEngine_RelaxedStrategy(t *testing.T) {
	night := buildShift("夜班", "22:00", "06:00", map[model.Weekday]int{model.Monday: 1})
	day := buildShift("日班", "08:00", "16:00", map[model.Weekday]int{model.Tuesday: 1})
	emp := buildEmployee("张三", night, day)

	// 夜班次日禁止接日班
	rule := &model.ShiftRule{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		Kind:        model.RuleForbiddenSequence,
		FromShiftID: night.ID,
		ToShiftIDs:  []uuid.UUID{day.ID},
	}

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-02",
		Employees:  []*model.Employee{emp},
		ShiftTypes: []*model.ShiftType{night, day},
		Rules:      []*model.ShiftRule{rule},
	})

	// 唯一员工周二触犯禁止序列，严格策略跳过后由宽松策略静默指派，
	// 不应降级到紧急策略产生冲突
	if len(result.Assignments) != 2 {
		t.Fatalf("分配数 = %d, expected 2", len(result.Assignments))
	}
	var tuesday *model.ShiftAssignment
	for _, a := range result.Assignments {
		if a.Date == "2024-01-02" {
			tuesday = a
		}
	}
	if tuesday == nil {
		t.Fatal("周二日班应完成指派")
	}
	if tuesday.ShiftID != day.ID || tuesday.EmployeeID != emp.ID {
		t.Errorf("周二分配内容错误: %+v", tuesday)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("宽松策略指派不应产生冲突: %v", result.Conflicts)
	}
	if result.Statistics.UnassignedShifts != 0 {
		t.Errorf("未指派数 = %d, expected 0", result.Statistics.UnassignedShifts)
	}
}

func TestEngine_EmergencyStrategy(t *testing.T) {
	shift := buildShift("早班", "08:00", "12:00", map[model.Weekday]int{model.Monday: 1})
	emp := buildEmployee("张三", shift)
	emp.Availability = map[model.AvailabilitySlot]bool{
		{Day: model.Monday, Half: model.HalfAM}: false,
	}

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-01",
		Employees:  []*model.Employee{emp},
		ShiftTypes: []*model.ShiftType{shift},
	})

	// 唯一员工不可用，紧急策略兜底并记录警告
	if len(result.Assignments) != 1 {
		t.Fatalf("紧急策略应完成指派，分配数 = %d", len(result.Assignments))
	}
	if len(result.Conflicts) != 1 || !strings.Contains(result.Conflicts[0], "紧急指派") {
		t.Errorf("应报告紧急指派冲突: %v", result.Conflicts)
	}
	if result.Statistics.UnassignedShifts != 0 {
		t.Errorf("紧急指派后未指派数 = %d, expected 0", result.Statistics.UnassignedShifts)
	}
}

func TestEngine_EmergencyKeepsOnePrimaryPerDay(t *testing.T) {
	first := buildShift("甲班", "08:00", "12:00", map[model.Weekday]int{model.Monday: 1})
	second := buildShift("乙班", "13:00", "17:00", map[model.Weekday]int{model.Monday: 1})
	emp := buildEmployee("张三", first, second)

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-01",
		Employees:  []*model.Employee{emp},
		ShiftTypes: []*model.ShiftType{first, second},
	})

	// 每人每日至多一个主分配，紧急策略也不突破
	if len(result.Assignments) != 1 {
		t.Fatalf("分配数 = %d, expected 1", len(result.Assignments))
	}
	if result.Statistics.UnassignedShifts != 1 {
		t.Errorf("未指派数 = %d, expected 1", result.Statistics.UnassignedShifts)
	}
}

func TestEngine_WorkloadBalancing(t *testing.T) {
	shift := buildShift("日班", "08:00", "16:00", map[model.Weekday]int{
		model.Monday: 1, model.Tuesday: 1, model.Wednesday: 1, model.Thursday: 1,
	})
	a := buildEmployee("甲", shift)
	b := buildEmployee("乙", shift)

	result := mustPlan(t, &Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-04",
		Employees:  []*model.Employee{a, b},
		ShiftTypes: []*model.ShiftType{shift},
	})

	counts := make(map[uuid.UUID]int)
	for _, asn := range result.Assignments {
		counts[asn.EmployeeID]++
	}
	if counts[a.ID] != 2 || counts[b.ID] != 2 {
		t.Errorf("工作量应均衡分布: 甲=%d 乙=%d", counts[a.ID], counts[b.ID])
	}
}

func TestEngine_Deterministic(t *testing.T) {
	shift := buildShift("日班", "08:00", "16:00", map[model.Weekday]int{
		model.Monday: 2, model.Wednesday: 2, model.Friday: 2,
	})
	employees := []*model.Employee{
		buildEmployee("甲", shift),
		buildEmployee("乙", shift),
		buildEmployee("丙", shift),
	}

	input := func() *Input {
		return &Input{
			StartDate:  "2024-01-01",
			EndDate:    "2024-01-12",
			Employees:  employees,
			ShiftTypes: []*model.ShiftType{shift},
		}
	}

	first := mustPlan(t, input())
	second := mustPlan(t, input())

	if len(first.Assignments) != len(second.Assignments) {
		t.Fatal("两次运行的分配数不一致")
	}
	for i := range first.Assignments {
		fa, sa := first.Assignments[i], second.Assignments[i]
		if fa.EmployeeID != sa.EmployeeID || fa.ShiftID != sa.ShiftID || fa.Date != sa.Date {
			t.Fatalf("第 %d 个分配不一致", i)
		}
	}
}

func TestEngine_InvalidHorizon(t *testing.T) {
	e := New(&Input{StartDate: "bogus", EndDate: "2024-01-05"})
	if _, err := e.Plan(context.Background()); err == nil {
		t.Error("无效开始日期应返回错误")
	}

	e = New(&Input{StartDate: "2024-01-05", EndDate: "2024-01-01"})
	if _, err := e.Plan(context.Background()); err == nil {
		t.Error("结束早于开始应返回错误")
	}
}

func TestEngine_ContextCancel(t *testing.T) {
	shift := buildShift("日班", "08:00", "16:00", map[model.Weekday]int{model.Monday: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(&Input{
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-05",
		Employees:  []*model.Employee{buildEmployee("张三", shift)},
		ShiftTypes: []*model.ShiftType{shift},
	})
	if _, err := e.Plan(ctx); err != context.Canceled {
		t.Errorf("已取消的上下文应返回 context.Canceled, 实际 %v", err)
	}
}
