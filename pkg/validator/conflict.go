// Package validator 提供排班结果验证功能
package validator

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictDuplicateSlot     ConflictType = "duplicate_slot"     // 同一名额多个主排班
	ConflictDoubleBooked      ConflictType = "double_booked"      // 同日多个主排班
	ConflictUnavailable       ConflictType = "unavailable"        // 员工不可用
	ConflictUnqualified       ConflictType = "unqualified"        // 员工无资质
	ConflictForbiddenSequence ConflictType = "forbidden_sequence" // 违反禁止序列
	ConflictMissingFollowUp   ConflictType = "missing_follow_up"  // 缺少强制衔接班
	ConflictUnknownReference  ConflictType = "unknown_reference"  // 引用不存在的员工或班次
)

// Conflict 冲突信息
type Conflict struct {
	Type        ConflictType `json:"type"`
	Severity    string       `json:"severity"` // error/warning
	EmployeeID  uuid.UUID    `json:"employee_id,omitempty"`
	Date        string       `json:"date,omitempty"`
	Message     string       `json:"message"`
	Assignments []uuid.UUID  `json:"assignments,omitempty"` // 相关的排班ID
}

// ScheduleValidator 排班结果验证器
// 对一份完整排班逐条检查约束，用于外部导入或人工改动后的复核
type ScheduleValidator struct {
	empMap      map[uuid.UUID]*model.Employee
	shiftMap    map[uuid.UUID]*model.ShiftType
	rules       []*model.ShiftRule
	qualsByYear map[int]*model.LearningYearQualification
}

// NewScheduleValidator 创建排班结果验证器
func NewScheduleValidator(
	employees []*model.Employee,
	shiftTypes []*model.ShiftType,
	rules []*model.ShiftRule,
	qualifications []*model.LearningYearQualification,
) *ScheduleValidator {
	v := &ScheduleValidator{
		empMap:      make(map[uuid.UUID]*model.Employee),
		shiftMap:    make(map[uuid.UUID]*model.ShiftType),
		rules:       rules,
		qualsByYear: make(map[int]*model.LearningYearQualification),
	}
	for _, e := range employees {
		v.empMap[e.ID] = e
	}
	for _, s := range shiftTypes {
		v.shiftMap[s.ID] = s
	}
	for _, q := range qualifications {
		v.qualsByYear[q.Year] = q
	}
	return v
}

// Validate 检查整份排班
// 冲突按日期、员工排序，保证输出稳定
func (v *ScheduleValidator) Validate(assignments []*model.ShiftAssignment) []Conflict {
	var conflicts []Conflict

	conflicts = append(conflicts, v.checkReferences(assignments)...)
	conflicts = append(conflicts, v.checkSlotExclusivity(assignments)...)
	conflicts = append(conflicts, v.checkEligibility(assignments)...)
	conflicts = append(conflicts, v.checkRuleCompliance(assignments)...)

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].Date != conflicts[j].Date {
			return conflicts[i].Date < conflicts[j].Date
		}
		return conflicts[i].EmployeeID.String() < conflicts[j].EmployeeID.String()
	})
	return conflicts
}

// checkReferences 检查分配引用的员工和班次是否存在
func (v *ScheduleValidator) checkReferences(assignments []*model.ShiftAssignment) []Conflict {
	var conflicts []Conflict
	for _, a := range assignments {
		if _, ok := v.empMap[a.EmployeeID]; !ok {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictUnknownReference,
				Severity:    "error",
				EmployeeID:  a.EmployeeID,
				Date:        a.Date,
				Message:     fmt.Sprintf("排班引用了不存在的员工 %s", a.EmployeeID),
				Assignments: []uuid.UUID{a.ID},
			})
		}
		if _, ok := v.shiftMap[a.ShiftID]; !ok {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictUnknownReference,
				Severity:    "error",
				EmployeeID:  a.EmployeeID,
				Date:        a.Date,
				Message:     fmt.Sprintf("排班引用了不存在的班次 %s", a.ShiftID),
				Assignments: []uuid.UUID{a.ID},
			})
		}
	}
	return conflicts
}

// checkSlotExclusivity 检查名额与每日主排班唯一性
func (v *ScheduleValidator) checkSlotExclusivity(assignments []*model.ShiftAssignment) []Conflict {
	var conflicts []Conflict

	type slotKey struct {
		date    string
		shiftID uuid.UUID
	}
	slotSeen := make(map[slotKey][]uuid.UUID)
	dateSeen := make(map[string][]uuid.UUID) // empID+date -> 主排班ID

	for _, a := range assignments {
		if !a.IsPrimary() {
			continue
		}
		sk := slotKey{date: a.Date, shiftID: a.ShiftID}
		slotSeen[sk] = append(slotSeen[sk], a.ID)
		dk := a.EmployeeID.String() + "|" + a.Date
		dateSeen[dk] = append(dateSeen[dk], a.ID)
	}

	for sk, ids := range slotSeen {
		if len(ids) > 1 {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDuplicateSlot,
				Severity:    "error",
				Date:        sk.date,
				Message:     fmt.Sprintf("%s 的 %s 班次名额被 %d 条主排班占用", sk.date, v.shiftName(sk.shiftID), len(ids)),
				Assignments: ids,
			})
		}
	}
	for dk, ids := range dateSeen {
		if len(ids) > 1 {
			empID, date := splitDateKey(dk)
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDoubleBooked,
				Severity:    "error",
				EmployeeID:  empID,
				Date:        date,
				Message:     fmt.Sprintf("员工 %s 在 %s 持有 %d 条主排班", v.employeeName(empID), date, len(ids)),
				Assignments: ids,
			})
		}
	}
	return conflicts
}

// checkEligibility 检查可用性与资质
// 衔接班同样检查，导入的排班不享受引擎内的宽松策略
func (v *ScheduleValidator) checkEligibility(assignments []*model.ShiftAssignment) []Conflict {
	var conflicts []Conflict
	for _, a := range assignments {
		emp := v.empMap[a.EmployeeID]
		shift := v.shiftMap[a.ShiftID]
		if emp == nil || shift == nil {
			continue
		}

		if !scheduler.IsQualified(emp, shift, v.qualsByYear) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictUnqualified,
				Severity:    "error",
				EmployeeID:  emp.ID,
				Date:        a.Date,
				Message:     fmt.Sprintf("员工 %s 无 %s 班次资质", emp.Name, shift.Name),
				Assignments: []uuid.UUID{a.ID},
			})
		}
		if !scheduler.IsAvailable(emp, a.Date, shift) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictUnavailable,
				Severity:    "warning",
				EmployeeID:  emp.ID,
				Date:        a.Date,
				Message:     fmt.Sprintf("员工 %s 在 %s 对 %s 班次不可用", emp.Name, a.Date, shift.Name),
				Assignments: []uuid.UUID{a.ID},
			})
		}
	}
	return conflicts
}

// checkRuleCompliance 检查禁止序列与强制衔接
func (v *ScheduleValidator) checkRuleCompliance(assignments []*model.ShiftAssignment) []Conflict {
	var conflicts []Conflict

	// empID+date -> 该日全部班次ID
	worked := make(map[string]map[uuid.UUID][]uuid.UUID)
	for _, a := range assignments {
		if worked[a.Date] == nil {
			worked[a.Date] = make(map[uuid.UUID][]uuid.UUID)
		}
		worked[a.Date][a.EmployeeID] = append(worked[a.Date][a.EmployeeID], a.ShiftID)
	}
	has := func(date string, empID, shiftID uuid.UUID) bool {
		for _, id := range worked[date][empID] {
			if id == shiftID {
				return true
			}
		}
		return false
	}

	for _, a := range assignments {
		for _, rule := range v.rules {
			switch rule.Kind {
			case model.RuleForbiddenSequence:
				if !rule.Forbids(a.ShiftID) {
					continue
				}
				checkDate := a.Date
				if !rule.SameDay {
					checkDate = model.PrevDate(a.Date)
				}
				if has(checkDate, a.EmployeeID, rule.FromShiftID) {
					conflicts = append(conflicts, Conflict{
						Type:        ConflictForbiddenSequence,
						Severity:    "error",
						EmployeeID:  a.EmployeeID,
						Date:        a.Date,
						Message:     fmt.Sprintf("员工 %s 在 %s 的 %s 班次违反禁止序列规则 %s", v.employeeName(a.EmployeeID), a.Date, v.shiftName(a.ShiftID), rule.Name),
						Assignments: []uuid.UUID{a.ID},
					})
				}

			case model.RuleMandatoryFollowUp:
				if !a.IsPrimary() || a.ShiftID != rule.FromShiftID {
					continue
				}
				if !has(a.Date, a.EmployeeID, rule.FollowUpShiftID) {
					conflicts = append(conflicts, Conflict{
						Type:        ConflictMissingFollowUp,
						Severity:    "warning",
						EmployeeID:  a.EmployeeID,
						Date:        a.Date,
						Message:     fmt.Sprintf("员工 %s 在 %s 的 %s 班次缺少强制衔接的 %s 班次", v.employeeName(a.EmployeeID), a.Date, v.shiftName(a.ShiftID), v.shiftName(rule.FollowUpShiftID)),
						Assignments: []uuid.UUID{a.ID},
					})
				}
			}
		}
	}
	return conflicts
}

func (v *ScheduleValidator) employeeName(id uuid.UUID) string {
	if emp, ok := v.empMap[id]; ok {
		return emp.Name
	}
	return id.String()
}

func (v *ScheduleValidator) shiftName(id uuid.UUID) string {
	if shift, ok := v.shiftMap[id]; ok {
		return shift.Name
	}
	return id.String()
}

func splitDateKey(key string) (uuid.UUID, string) {
	// uuid 固定 36 位，其后是分隔符和日期
	if len(key) < 38 {
		return uuid.Nil, ""
	}
	id, err := uuid.Parse(key[:36])
	if err != nil {
		return uuid.Nil, key[37:]
	}
	return id, key[37:]
}
