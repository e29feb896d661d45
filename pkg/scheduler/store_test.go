package scheduler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

func TestAssignmentStore_PrimarySlotExclusive(t *testing.T) {
	store := NewAssignmentStore(nil)
	shiftID := uuid.New()

	first := &model.ShiftAssignment{ID: uuid.New(), EmployeeID: uuid.New(), ShiftID: shiftID, Date: monday}
	if !store.Add(first) {
		t.Fatal("空槽位的主分配应提交成功")
	}

	second := &model.ShiftAssignment{ID: uuid.New(), EmployeeID: uuid.New(), ShiftID: shiftID, Date: monday}
	if store.Add(second) {
		t.Error("已占用槽位的主分配应被拒绝")
	}

	// 衔接分配不占用槽位，可与主分配并存
	followUp := &model.ShiftAssignment{ID: uuid.New(), EmployeeID: uuid.New(), ShiftID: shiftID, Date: monday, IsFollowUp: true}
	if !store.Add(followUp) {
		t.Error("衔接分配应可与主分配并存")
	}

	if store.Count() != 2 {
		t.Errorf("分配总数 = %d, expected 2", store.Count())
	}
	if n := store.PrimaryCountOn(monday, shiftID); n != 1 {
		t.Errorf("主分配数 = %d, expected 1", n)
	}
}

func TestAssignmentStore_SeedsExisting(t *testing.T) {
	empID := uuid.New()
	shiftID := uuid.New()
	existing := []*model.ShiftAssignment{
		{ID: uuid.New(), EmployeeID: empID, ShiftID: shiftID, Date: monday, Locked: true},
	}

	store := NewAssignmentStore(existing)

	if store.Count() != 1 {
		t.Fatalf("装载已有分配后总数 = %d, expected 1", store.Count())
	}
	if !store.HasPrimaryOn(empID, monday) {
		t.Error("已有主分配应计入员工当日占用")
	}
	if holder, ok := store.PrimaryHolder(monday, shiftID); !ok || holder != empID {
		t.Error("已有主分配应占据槽位")
	}

	// 装载时复制，改动输入不影响存储
	existing[0].Date = tuesday
	if store.HasPrimaryOn(empID, tuesday) {
		t.Error("存储应持有已有分配的副本")
	}
}

func TestAssignmentStore_EmployeeQueries(t *testing.T) {
	store := NewAssignmentStore(nil)
	empID := uuid.New()
	shiftA := uuid.New()
	shiftB := uuid.New()

	store.Add(&model.ShiftAssignment{ID: uuid.New(), EmployeeID: empID, ShiftID: shiftA, Date: monday})
	store.Add(&model.ShiftAssignment{ID: uuid.New(), EmployeeID: empID, ShiftID: shiftB, Date: monday, IsFollowUp: true})

	if !store.HasPrimaryOn(empID, monday) {
		t.Error("员工当日应持有主分配")
	}
	if store.HasPrimaryOn(empID, tuesday) {
		t.Error("其他日期不应有主分配")
	}
	if !store.Has(empID, shiftB, monday) {
		t.Error("衔接分配应可查询到")
	}
	if got := len(store.ForEmployeeOn(empID, monday)); got != 2 {
		t.Errorf("员工当日分配数 = %d, expected 2", got)
	}
}
