package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

func TestAssignmentRepository_SaveAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建 sqlmock 失败: %v", err)
	}
	defer db.Close()

	repo := NewAssignmentRepository(db)
	assignments := []*model.ShiftAssignment{
		{EmployeeID: uuid.New(), ShiftID: uuid.New(), Date: "2024-01-01"},
		{EmployeeID: uuid.New(), ShiftID: uuid.New(), Date: "2024-01-02", IsFollowUp: true},
	}

	mock.ExpectBegin()
	for range assignments {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shift_assignments")).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("开启事务失败: %v", err)
	}
	if err := repo.SaveAll(context.Background(), tx, assignments); err != nil {
		t.Fatalf("SaveAll 失败: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("提交事务失败: %v", err)
	}

	for _, a := range assignments {
		if a.ID == uuid.Nil {
			t.Error("SaveAll 应补全分配ID")
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("SQL 期望未满足: %v", err)
	}
}

// sqlTxRunner 测试用事务执行器，直接基于 database/sql 实现
type sqlTxRunner struct {
	db *sql.DB
}

func (r sqlTxRunner) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func TestPlanStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建 sqlmock 失败: %v", err)
	}
	defer db.Close()

	store := NewPlanStore(sqlTxRunner{db: db}, NewAssignmentRepository(db))
	assignments := []*model.ShiftAssignment{
		{EmployeeID: uuid.New(), ShiftID: uuid.New(), Date: "2024-01-01"},
		{EmployeeID: uuid.New(), ShiftID: uuid.New(), Date: "2024-01-01", IsFollowUp: true},
	}

	mock.ExpectBegin()
	for range assignments {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shift_assignments")).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := store.Save(context.Background(), assignments); err != nil {
		t.Fatalf("Save 失败: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("SQL 期望未满足: %v", err)
	}
}

func TestPlanStore_SaveEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建 sqlmock 失败: %v", err)
	}
	defer db.Close()

	store := NewPlanStore(sqlTxRunner{db: db}, NewAssignmentRepository(db))

	// 空结果不应开启事务
	if err := store.Save(context.Background(), nil); err != nil {
		t.Fatalf("空结果保存失败: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("SQL 期望未满足: %v", err)
	}
}

func TestAssignmentRepository_ListLocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建 sqlmock 失败: %v", err)
	}
	defer db.Close()

	repo := NewAssignmentRepository(db)
	empID := uuid.New()
	shiftID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "employee_id", "shift_id", "date", "locked", "is_follow_up"}).
		AddRow(uuid.New(), empID, shiftID, "2024-01-01", true, false)

	mock.ExpectQuery(regexp.QuoteMeta("locked = TRUE")).
		WithArgs("2024-01-01", "2024-01-05").
		WillReturnRows(rows)

	assignments, err := repo.ListLocked(context.Background(), "2024-01-01", "2024-01-05")
	if err != nil {
		t.Fatalf("ListLocked 失败: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("期望 1 条锁定分配，实际 %d", len(assignments))
	}
	if !assignments[0].Locked || assignments[0].EmployeeID != empID {
		t.Errorf("锁定分配内容错误: %+v", assignments[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("SQL 期望未满足: %v", err)
	}
}

func TestAssignmentRepository_SetLocked_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建 sqlmock 失败: %v", err)
	}
	defer db.Close()

	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shift_assignments SET locked")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetLocked(context.Background(), uuid.New(), true); err == nil {
		t.Error("锁定不存在的分配应返回错误")
	}
}
