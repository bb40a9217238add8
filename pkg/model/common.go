// Package model 定义派工引擎的核心数据模型
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ShiftType 班次类型
type ShiftType string

const (
	ShiftDay   ShiftType = "day"   // 白班
	ShiftNight ShiftType = "night" // 夜班
	ShiftSwing ShiftType = "swing" // 中班
	ShiftNone  ShiftType = "none"  // 无偏好
)

// Proficiency 熟练度等级
type Proficiency string

const (
	ProficiencyExpert       Proficiency = "expert"       // 专家
	ProficiencyAdvanced     Proficiency = "advanced"     // 高级
	ProficiencyIntermediate Proficiency = "intermediate" // 中级
	ProficiencyBeginner     Proficiency = "beginner"     // 初级
	ProficiencyNone         Proficiency = "none"         // 无
)

// Level 返回熟练度的序数（用于取最大值比较）
func (p Proficiency) Level() int {
	switch p {
	case ProficiencyExpert:
		return 4
	case ProficiencyAdvanced:
		return 3
	case ProficiencyIntermediate:
		return 2
	case ProficiencyBeginner:
		return 1
	default:
		return 0
	}
}

// AvailabilityType 可用性区块类型
type AvailabilityType string

const (
	AvailabilityUnavailable AvailabilityType = "unavailable" // 不可用
	AvailabilityVacation    AvailabilityType = "vacation"    // 休假
	AvailabilitySick        AvailabilityType = "sick"        // 病假
	AvailabilityTraining    AvailabilityType = "training"    // 培训
)

// IsBlocking 判断该类型是否阻断排班（培训只降级为部分可用）
func (t AvailabilityType) IsBlocking() bool {
	switch t {
	case AvailabilityUnavailable, AvailabilityVacation, AvailabilitySick:
		return true
	default:
		return false
	}
}

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// DateRange 日期范围
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// ContainsDate 判断日期范围是否包含某天（闭区间）
func (r DateRange) ContainsDate(date string) bool {
	if r.StartDate == "" || r.EndDate == "" {
		return false
	}
	return date >= r.StartDate && date <= r.EndDate
}

// NameMatches 判断两个系统/证书名称是否匹配（大小写不敏感的双向子串匹配）
func NameMatches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
