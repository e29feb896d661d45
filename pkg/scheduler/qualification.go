package scheduler

import (
	"github.com/zhiban/zhiban/pkg/model"
)

// IsQualified 检查员工是否具备某班次的资质
//
// 班次必须在员工的允许列表中。带培训年级的学员还需存在对应年级的
// 培训资质且其中列出该班次；普通员工与未声明年级的学员跳过第二层检查。
func IsQualified(emp *model.Employee, shift *model.ShiftType, qualsByYear map[int]*model.LearningYearQualification) bool {
	if !emp.AllowsShift(shift.ID) {
		return false
	}

	if emp.IsTrainee() {
		qual, ok := qualsByYear[emp.TraineeYear]
		if !ok || !qual.Allows(shift.ID) {
			return false
		}
	}

	return true
}
