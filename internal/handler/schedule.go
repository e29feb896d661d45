// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/validator"
)

// AssignmentSaver 排班结果落库接口
// 未配置时生成的排班仅随响应返回，不做持久化
type AssignmentSaver interface {
	Save(ctx context.Context, assignments []*model.ShiftAssignment) error
}

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	cfg   config.EngineConfig
	saver AssignmentSaver
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(cfg config.EngineConfig) *ScheduleHandler {
	return &ScheduleHandler{cfg: cfg}
}

// WithSaver 配置排班结果落库
func (h *ScheduleHandler) WithSaver(s AssignmentSaver) *ScheduleHandler {
	h.saver = s
	return h
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	scheduler.Input

	// 可选的请求级超时（秒），受服务端默认值约束
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Success     bool                     `json:"success"`
	Assignments []*model.ShiftAssignment `json:"assignments"`
	Conflicts   []string                 `json:"conflicts"`
	Statistics  *scheduler.Statistics    `json:"statistics"`
	Duration    string                   `json:"duration"`
}

// Generate 生成排班
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if err := h.validateGenerateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	timeout := h.cfg.DefaultTimeout
	if req.TimeoutSeconds > 0 {
		requested := time.Duration(req.TimeoutSeconds) * time.Second
		if requested < timeout {
			timeout = requested
		}
	}
	planCtx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	startedAt := time.Now()
	result, err := scheduler.New(&req.Input).Plan(planCtx)
	if err != nil {
		metrics.ScheduleRunFailed()
		if err == context.DeadlineExceeded {
			respondError(w, errors.New(errors.CodeTimeout, "排班计算超时，请缩短排班周期或减少班次需求"))
			return
		}
		if err == context.Canceled {
			respondError(w, errors.New(errors.CodeInternal, "排班请求已取消"))
			return
		}
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "排班失败"))
		return
	}

	metrics.ScheduleRunCompleted(time.Since(startedAt),
		result.Statistics.TotalAssignments, result.Statistics.UnassignedShifts, len(result.Conflicts))

	// 落库失败不影响返回结果，排班本身已经完成
	if h.saver != nil {
		if err := h.saver.Save(r.Context(), result.Assignments); err != nil {
			logger.Error().Err(err).Msg("排班结果落库失败")
		}
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:     true,
		Assignments: result.Assignments,
		Conflicts:   result.Conflicts,
		Statistics:  result.Statistics,
		Duration:    result.Duration.String(),
	})
}

// validateGenerateRequest 验证排班生成请求
func (h *ScheduleHandler) validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.StartDate == "" {
		ve.Add("start_date", "开始日期不能为空")
	}
	if req.EndDate == "" {
		ve.Add("end_date", "结束日期不能为空")
	}
	if len(req.Employees) == 0 {
		ve.Add("employees", "员工列表不能为空")
	}
	if len(req.ShiftTypes) == 0 {
		ve.Add("shift_types", "班次类型列表不能为空")
	}

	var start, end time.Time
	if req.StartDate != "" {
		var err error
		if start, err = time.Parse(model.DateLayout, req.StartDate); err != nil {
			ve.Add("start_date", "日期格式无效，应为YYYY-MM-DD")
		}
	}
	if req.EndDate != "" {
		var err error
		if end, err = time.Parse(model.DateLayout, req.EndDate); err != nil {
			ve.Add("end_date", "日期格式无效，应为YYYY-MM-DD")
		}
	}
	if !start.IsZero() && !end.IsZero() {
		if end.Before(start) {
			ve.Add("end_date", "结束日期不能早于开始日期")
		} else if days := int(end.Sub(start).Hours()/24) + 1; days > h.cfg.MaxHorizonDays {
			ve.Add("end_date", "排班周期过长")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// ValidateRequest 排班验证请求
type ValidateRequest struct {
	Employees      []*model.Employee                  `json:"employees"`
	ShiftTypes     []*model.ShiftType                 `json:"shift_types"`
	Rules          []*model.ShiftRule                 `json:"rules,omitempty"`
	Qualifications []*model.LearningYearQualification `json:"qualifications,omitempty"`
	Assignments    []*model.ShiftAssignment           `json:"assignments"`
}

// ValidateResponse 验证响应
type ValidateResponse struct {
	IsValid   bool                 `json:"is_valid"`
	Errors    int                  `json:"errors"`
	Warnings  int                  `json:"warnings"`
	Conflicts []validator.Conflict `json:"conflicts"`
}

// Validate 验证一份排班是否满足全部约束
// 用于外部导入或人工改动后的复核
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Assignments) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "排班列表不能为空"))
		return
	}

	v := validator.NewScheduleValidator(req.Employees, req.ShiftTypes, req.Rules, req.Qualifications)
	conflicts := v.Validate(req.Assignments)

	errCount, warnCount := 0, 0
	for _, c := range conflicts {
		if c.Severity == "error" {
			errCount++
		} else {
			warnCount++
		}
	}
	if conflicts == nil {
		conflicts = []validator.Conflict{}
	}

	respondJSON(w, http.StatusOK, ValidateResponse{
		IsValid:   errCount == 0,
		Errors:    errCount,
		Warnings:  warnCount,
		Conflicts: conflicts,
	})
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}
