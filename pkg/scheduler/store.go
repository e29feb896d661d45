package scheduler

import (
	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// slotKey 主分配槽位键
type slotKey struct {
	Date    string
	ShiftID uuid.UUID
}

// empDateKey 员工-日期键
type empDateKey struct {
	EmployeeID uuid.UUID
	Date       string
}

// AssignmentStore 分配存储
// 引擎内所有组件共享的唯一事实来源，只增不删。
// 同一 (日期, 班次) 槽位最多持有一个主分配，衔接分配不占用槽位。
type AssignmentStore struct {
	assignments []*model.ShiftAssignment

	primaryCount  map[slotKey]int
	primaryHolder map[slotKey]uuid.UUID
	byEmpDate     map[empDateKey][]*model.ShiftAssignment
}

// NewAssignmentStore 创建分配存储并装载已有分配
// 已有分配原样保留；索引中首个主分配占据槽位
func NewAssignmentStore(existing []*model.ShiftAssignment) *AssignmentStore {
	s := &AssignmentStore{
		assignments:   make([]*model.ShiftAssignment, 0, len(existing)),
		primaryCount:  make(map[slotKey]int),
		primaryHolder: make(map[slotKey]uuid.UUID),
		byEmpDate:     make(map[empDateKey][]*model.ShiftAssignment),
	}
	for _, a := range existing {
		copied := *a
		s.append(&copied)
	}
	return s
}

// Add 提交新分配
// 主分配落入已占用槽位时拒绝并返回 false
func (s *AssignmentStore) Add(a *model.ShiftAssignment) bool {
	if a.IsPrimary() {
		key := slotKey{Date: a.Date, ShiftID: a.ShiftID}
		if s.primaryCount[key] > 0 {
			return false
		}
	}
	s.append(a)
	return true
}

// append 追加分配并维护索引
func (s *AssignmentStore) append(a *model.ShiftAssignment) {
	s.assignments = append(s.assignments, a)
	if a.IsPrimary() {
		key := slotKey{Date: a.Date, ShiftID: a.ShiftID}
		s.primaryCount[key]++
		if _, ok := s.primaryHolder[key]; !ok {
			s.primaryHolder[key] = a.EmployeeID
		}
	}
	ek := empDateKey{EmployeeID: a.EmployeeID, Date: a.Date}
	s.byEmpDate[ek] = append(s.byEmpDate[ek], a)
}

// All 返回全部分配
func (s *AssignmentStore) All() []*model.ShiftAssignment {
	return s.assignments
}

// Count 返回分配总数
func (s *AssignmentStore) Count() int {
	return len(s.assignments)
}

// PrimaryCountOn 返回某槽位的主分配数
func (s *AssignmentStore) PrimaryCountOn(date string, shiftID uuid.UUID) int {
	return s.primaryCount[slotKey{Date: date, ShiftID: shiftID}]
}

// PrimaryHolder 返回某槽位主分配的员工
func (s *AssignmentStore) PrimaryHolder(date string, shiftID uuid.UUID) (uuid.UUID, bool) {
	id, ok := s.primaryHolder[slotKey{Date: date, ShiftID: shiftID}]
	return id, ok
}

// HasPrimaryOn 检查员工当日是否已持有主分配
func (s *AssignmentStore) HasPrimaryOn(empID uuid.UUID, date string) bool {
	for _, a := range s.byEmpDate[empDateKey{EmployeeID: empID, Date: date}] {
		if a.IsPrimary() {
			return true
		}
	}
	return false
}

// Has 检查员工当日是否已持有某班次的分配（主分配或衔接分配）
func (s *AssignmentStore) Has(empID, shiftID uuid.UUID, date string) bool {
	for _, a := range s.byEmpDate[empDateKey{EmployeeID: empID, Date: date}] {
		if a.ShiftID == shiftID {
			return true
		}
	}
	return false
}

// ForEmployeeOn 返回员工当日的全部分配
func (s *AssignmentStore) ForEmployeeOn(empID uuid.UUID, date string) []*model.ShiftAssignment {
	return s.byEmpDate[empDateKey{EmployeeID: empID, Date: date}]
}
