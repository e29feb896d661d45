package scheduler

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/model"
)

// checkForbiddenSequence 检查候选分配是否触犯禁止序列规则
//
// same_day 规则检查同日已有分配，否则检查前一日分配。
// 返回首个触犯规则的描述。
func (e *Engine) checkForbiddenSequence(emp *model.Employee, date string, shift *model.ShiftType) (string, bool) {
	for _, rule := range e.in.Rules {
		if rule.Kind != model.RuleForbiddenSequence {
			continue
		}
		if !rule.Forbids(shift.ID) {
			continue
		}

		checkDate := model.PrevDate(date)
		if rule.SameDay {
			checkDate = date
		}

		for _, prev := range e.store.ForEmployeeOn(emp.ID, checkDate) {
			if prev.ShiftID == rule.FromShiftID {
				scope := "次日"
				if rule.SameDay {
					scope = "同日"
				}
				return fmt.Sprintf("员工 %s 于 %s 已执勤 %s，%s禁止接 %s",
					emp.Name, checkDate, e.shiftName(rule.FromShiftID), scope, shift.Name), true
			}
		}
	}
	return "", false
}

// attachFollowUp 主分配提交后的即时强制衔接
//
// 仅对本轮排班新产生的主分配生效，深度为一：衔接分配不再触发衔接。
// 此处不满足条件时静默跳过，补扫阶段会统一报告冲突。
func (e *Engine) attachFollowUp(emp *model.Employee, shift *model.ShiftType, date string) {
	for _, rule := range e.in.Rules {
		if rule.Kind != model.RuleMandatoryFollowUp || rule.FromShiftID != shift.ID {
			continue
		}

		followUp, ok := e.shiftMap[rule.FollowUpShiftID]
		if !ok {
			continue
		}
		if e.store.Has(emp.ID, followUp.ID, date) {
			continue
		}
		if !IsQualified(emp, followUp, e.qualsByYear) || !IsAvailable(emp, date, followUp) {
			continue
		}

		e.commit(&model.ShiftAssignment{
			ID:         newAssignmentID(),
			EmployeeID: emp.ID,
			ShiftID:    followUp.ID,
			Date:       date,
			IsFollowUp: true,
		})
	}
}

// enforceFollowUps 全周期处理后的强制衔接补扫
//
// 即时衔接只覆盖本轮新产生的主分配，补扫额外覆盖排班前已存在
// （例如已锁定）的主分配。衔接失败降级为冲突消息，主分配保留。
func (e *Engine) enforceFollowUps() {
	primaries := make([]*model.ShiftAssignment, 0, e.store.Count())
	for _, a := range e.store.All() {
		if a.IsPrimary() {
			primaries = append(primaries, a)
		}
	}

	for _, a := range primaries {
		for _, rule := range e.in.Rules {
			if rule.Kind != model.RuleMandatoryFollowUp || rule.FromShiftID != a.ShiftID {
				continue
			}

			followUp, ok := e.shiftMap[rule.FollowUpShiftID]
			if !ok {
				continue
			}
			if e.store.Has(a.EmployeeID, followUp.ID, a.Date) {
				continue
			}

			empName := e.employeeName(a.EmployeeID)

			if holder, occupied := e.store.PrimaryHolder(a.Date, followUp.ID); occupied && holder != a.EmployeeID {
				e.addConflict(fmt.Sprintf("强制衔接失败：%s 于 %s 的槽位已被其他员工占用，无法为员工 %s 衔接",
					followUp.Name, a.Date, empName))
				continue
			}

			emp, ok := e.empMap[a.EmployeeID]
			if !ok || !IsQualified(emp, followUp, e.qualsByYear) || !IsAvailable(emp, a.Date, followUp) {
				e.addConflict(fmt.Sprintf("强制衔接失败：员工 %s 于 %s 不具备 %s 的资质或不可用",
					empName, a.Date, followUp.Name))
				continue
			}

			e.commit(&model.ShiftAssignment{
				ID:         newAssignmentID(),
				EmployeeID: emp.ID,
				ShiftID:    followUp.ID,
				Date:       a.Date,
				IsFollowUp: true,
			})
		}
	}
}
