package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/stats"
)

// StatsHandler 统计分析处理器
type StatsHandler struct {
	fairness *stats.FairnessAnalyzer
	coverage *stats.CoverageAnalyzer
}

// NewStatsHandler 创建统计分析处理器
func NewStatsHandler() *StatsHandler {
	return &StatsHandler{
		fairness: stats.NewFairnessAnalyzer(),
		coverage: stats.NewCoverageAnalyzer(),
	}
}

// FairnessRequest 公平性分析请求
type FairnessRequest struct {
	Assignments []*model.ShiftAssignment `json:"assignments"`
	Employees   []*model.Employee        `json:"employees"`
	Teams       []*model.Team            `json:"teams,omitempty"`
	ShiftTypes  []*model.ShiftType       `json:"shift_types"`
}

// Fairness 分析排班工作量公平性
func (h *StatsHandler) Fairness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req FairnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Employees) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "员工列表不能为空"))
		return
	}

	metrics := h.fairness.Analyze(req.Assignments, req.Employees, req.Teams, req.ShiftTypes)
	respondJSON(w, http.StatusOK, metrics)
}

// CoverageRequest 覆盖率分析请求
type CoverageRequest struct {
	StartDate   string                   `json:"start_date"`
	EndDate     string                   `json:"end_date"`
	ShiftTypes  []*model.ShiftType       `json:"shift_types"`
	Assignments []*model.ShiftAssignment `json:"assignments"`
}

// Coverage 分析日期范围内的名额覆盖率
func (h *StatsHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req CoverageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	metrics, err := h.coverage.Analyze(req.StartDate, req.EndDate, req.ShiftTypes, req.Assignments)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "覆盖率分析失败"))
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}
