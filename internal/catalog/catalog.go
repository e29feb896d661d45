// Package catalog 提供规则与约束的自描述目录
// 供前端构建规则编辑表单，与引擎实际支持的检查保持一致
package catalog

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // uuid, uuid_array, bool, int
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
}

// RuleDefinition 规则定义
type RuleDefinition struct {
	Kind        string      `json:"kind"`
	DisplayName string      `json:"display_name"`
	Enforcement string      `json:"enforcement"` // strict 仅严格策略检查, always 全策略检查
	Description string      `json:"description"`
	Params      []RuleParam `json:"params"`
}

// CheckDefinition 内建检查定义
type CheckDefinition struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Enforcement string `json:"enforcement"`
	Description string `json:"description"`
}

// LibraryResponse 规则目录响应
type LibraryResponse struct {
	Rules  []RuleDefinition  `json:"rules"`
	Checks []CheckDefinition `json:"checks"`
}

// Library 返回引擎支持的全部规则类型与内建检查
func Library() LibraryResponse {
	return LibraryResponse{
		Rules: []RuleDefinition{
			{
				Kind:        "forbidden_sequence",
				DisplayName: "禁止序列",
				Enforcement: "strict",
				Description: "员工执勤 from 班次后，同日或次日不得再执勤 to 班次。仅严格策略检查，宽松与紧急策略会绕过并记录。",
				Params: []RuleParam{
					{Name: "from_shift_id", Type: "uuid", Description: "触发班次", Required: true},
					{Name: "to_shift_ids", Type: "uuid_array", Description: "被禁止的目标班次", Required: true},
					{Name: "same_day", Type: "bool", Description: "作用于同日；false 时作用于次日", Required: false, Default: "false"},
				},
			},
			{
				Kind:        "mandatory_follow_up",
				DisplayName: "强制衔接",
				Enforcement: "always",
				Description: "员工获得 from 主班次后，自动在同日补排衔接班次。排班运行结束后还会对已有主班次补扫一遍。",
				Params: []RuleParam{
					{Name: "from_shift_id", Type: "uuid", Description: "触发班次", Required: true},
					{Name: "follow_up_shift_id", Type: "uuid", Description: "衔接班次", Required: true},
				},
			},
		},
		Checks: []CheckDefinition{
			{
				Name:        "allowed_shifts",
				DisplayName: "班次白名单",
				Enforcement: "always",
				Description: "员工只能被指派到其允许班次列表中的班次类型，所有策略均不绕过。",
			},
			{
				Name:        "trainee_year_qualification",
				DisplayName: "学员年级资质",
				Enforcement: "always",
				Description: "学员只能执勤其年级资质允许的班次类型，所有策略均不绕过。",
			},
			{
				Name:        "weekly_availability",
				DisplayName: "半日可用性",
				Enforcement: "relaxed",
				Description: "按工作日上/下午半日声明可用性，跨夜班同时检查次日上午。紧急策略会绕过并记录。",
			},
			{
				Name:        "single_primary_per_day",
				DisplayName: "每日唯一主班次",
				Enforcement: "always",
				Description: "员工每日至多持有一个主班次，衔接班不受此限，所有策略均不绕过。",
			},
		},
	}
}
