// Package e2e 提供端到端HTTP接口测试
package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/internal/handler"
	"github.com/zhiban/zhiban/pkg/model"
)

// newTestServer 构造与线上路由一致的测试服务
func newTestServer() *httptest.Server {
	scheduleHandler := handler.NewScheduleHandler(config.EngineConfig{
		DefaultTimeout: 10 * time.Second,
		MaxHorizonDays: 92,
	})
	statsHandler := handler.NewStatsHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/schedule/generate", scheduleHandler.Generate)
	mux.HandleFunc("/api/v1/schedule/validate", scheduleHandler.Validate)
	mux.HandleFunc("/api/v1/stats/fairness", statsHandler.Fairness)
	mux.HandleFunc("/api/v1/stats/coverage", statsHandler.Coverage)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("序列化请求失败: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("发送请求失败: %v", err)
	}
	return resp
}

// TestGenerateEndpoint 测试排班生成接口全流程
func TestGenerateEndpoint(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	day := map[string]interface{}{
		"id":         uuid.New().String(),
		"name":       "白班",
		"start_time": "08:00",
		"end_time":   "16:00",
		"weekly_needs": map[string]int{
			"monday": 1, "tuesday": 1, "wednesday": 1, "thursday": 1, "friday": 1,
		},
	}
	employees := []map[string]interface{}{
		{"id": uuid.New().String(), "name": "张三", "type": "regular", "allowed_shifts": []string{day["id"].(string)}},
		{"id": uuid.New().String(), "name": "李四", "type": "regular", "allowed_shifts": []string{day["id"].(string)}},
	}

	resp := postJSON(t, server.URL+"/api/v1/schedule/generate", map[string]interface{}{
		"start_date":  "2024-01-01",
		"end_date":    "2024-01-05",
		"employees":   employees,
		"shift_types": []interface{}{day},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", resp.StatusCode)
	}

	var result struct {
		Success     bool                     `json:"success"`
		Assignments []*model.ShiftAssignment `json:"assignments"`
		Conflicts   []string                 `json:"conflicts"`
		Statistics  struct {
			TotalAssignments int `json:"total_assignments"`
			UnassignedShifts int `json:"unassigned_shifts"`
		} `json:"statistics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if !result.Success {
		t.Error("响应应标记成功")
	}
	if len(result.Assignments) != 5 {
		t.Errorf("一周白班应产生 5 条分配，实际 %d", len(result.Assignments))
	}
	if result.Statistics.UnassignedShifts != 0 {
		t.Errorf("不应有未指派名额，实际 %d", result.Statistics.UnassignedShifts)
	}
}

// TestGenerateEndpoint_BadRequest 测试请求校验
func TestGenerateEndpoint_BadRequest(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"缺少日期", map[string]interface{}{
			"employees":   []interface{}{map[string]interface{}{"id": uuid.New().String(), "name": "张三"}},
			"shift_types": []interface{}{map[string]interface{}{"id": uuid.New().String(), "name": "白班"}},
		}},
		{"空员工列表", map[string]interface{}{
			"start_date":  "2024-01-01",
			"end_date":    "2024-01-05",
			"shift_types": []interface{}{map[string]interface{}{"id": uuid.New().String(), "name": "白班"}},
		}},
		{"日期倒置", map[string]interface{}{
			"start_date":  "2024-01-05",
			"end_date":    "2024-01-01",
			"employees":   []interface{}{map[string]interface{}{"id": uuid.New().String(), "name": "张三"}},
			"shift_types": []interface{}{map[string]interface{}{"id": uuid.New().String(), "name": "白班"}},
		}},
		{"周期过长", map[string]interface{}{
			"start_date":  "2024-01-01",
			"end_date":    "2025-01-01",
			"employees":   []interface{}{map[string]interface{}{"id": uuid.New().String(), "name": "张三"}},
			"shift_types": []interface{}{map[string]interface{}{"id": uuid.New().String(), "name": "白班"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+"/api/v1/schedule/generate", tt.payload)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("期望 400，实际 %d", resp.StatusCode)
			}
		})
	}
}

// TestValidateEndpoint 测试排班验证接口
func TestValidateEndpoint(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	shiftID := uuid.New().String()
	empID := uuid.New().String()

	resp := postJSON(t, server.URL+"/api/v1/schedule/validate", map[string]interface{}{
		"employees": []interface{}{
			map[string]interface{}{"id": empID, "name": "张三", "type": "regular", "allowed_shifts": []string{shiftID}},
		},
		"shift_types": []interface{}{
			map[string]interface{}{"id": shiftID, "name": "白班", "start_time": "08:00", "end_time": "16:00"},
		},
		"assignments": []interface{}{
			map[string]interface{}{"id": uuid.New().String(), "employee_id": empID, "shift_id": shiftID, "date": "2024-01-01"},
			map[string]interface{}{"id": uuid.New().String(), "employee_id": empID, "shift_id": shiftID, "date": "2024-01-01"},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", resp.StatusCode)
	}

	var result struct {
		IsValid bool `json:"is_valid"`
		Errors  int  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if result.IsValid {
		t.Error("重复占用名额的排班不应通过验证")
	}
	if result.Errors == 0 {
		t.Error("应报告错误级冲突")
	}
}

// TestCoverageEndpoint 测试覆盖率统计接口
func TestCoverageEndpoint(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	shiftID := uuid.New().String()
	resp := postJSON(t, server.URL+"/api/v1/stats/coverage", map[string]interface{}{
		"start_date": "2024-01-01",
		"end_date":   "2024-01-01",
		"shift_types": []interface{}{
			map[string]interface{}{
				"id": shiftID, "name": "白班", "start_time": "08:00", "end_time": "16:00",
				"weekly_needs": map[string]int{"monday": 2},
			},
		},
		"assignments": []interface{}{
			map[string]interface{}{
				"id": uuid.New().String(), "employee_id": uuid.New().String(),
				"shift_id": shiftID, "date": "2024-01-01",
			},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", resp.StatusCode)
	}

	var result struct {
		TotalSlots      int     `json:"total_slots"`
		AssignedSlots   int     `json:"assigned_slots"`
		OverallCoverage float64 `json:"overall_coverage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if result.TotalSlots != 2 || result.AssignedSlots != 1 {
		t.Errorf("名额统计错误: %+v", result)
	}
	if result.OverallCoverage != 50 {
		t.Errorf("覆盖率应为 50，实际 %.1f", result.OverallCoverage)
	}
}
