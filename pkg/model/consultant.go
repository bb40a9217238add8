// Package model 定义派工引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Consultant 顾问（可派工的实施顾问档案）
type Consultant struct {
	BaseModel
	Name        string `json:"name" db:"name"`
	IsAvailable bool   `json:"is_available" db:"is_available"`
	IsOnboarded bool   `json:"is_onboarded" db:"is_onboarded"`
	State       string `json:"state,omitempty" db:"state"` // 所在州（两位缩写）

	// EMR 经验
	EMRSystems    []string        `json:"emr_systems,omitempty" db:"emr_systems"`       // 使用过的 EMR 系统（扁平列表）
	EMRExperience []EMRExperience `json:"emr_experience,omitempty" db:"emr_experience"` // 详细经验记录

	// 科室/单元经验
	Modules []string `json:"modules,omitempty" db:"modules"` // 做过的模块
	Units   []string `json:"units,omitempty" db:"units"`     // 做过的科室单元

	// 通用技能
	Skills []Skill `json:"skills,omitempty" db:"skills"`

	// 偏好
	ShiftPreference     ShiftType   `json:"shift_preference,omitempty" db:"shift_preference"`
	PreferredColleagues []uuid.UUID `json:"preferred_colleagues,omitempty" db:"preferred_colleagues"`

	// 历史评价
	Ratings []Rating `json:"ratings,omitempty" db:"-"`

	// 可用性区块
	Availability []AvailabilityBlock `json:"availability,omitempty" db:"-"`
}

// EMRExperience 详细 EMR 经验记录
type EMRExperience struct {
	System          string      `json:"system"`
	Proficiency     Proficiency `json:"proficiency"`
	IsCertified     bool        `json:"is_certified"`
	YearsExperience float64     `json:"years_experience"`
}

// Skill 通用技能
type Skill struct {
	SkillID     string      `json:"skill_id"`
	Name        string      `json:"name,omitempty"`
	Proficiency Proficiency `json:"proficiency"`
	IsCertified bool        `json:"is_certified"`
}

// Rating 历史评价
type Rating struct {
	OverallRating *float64 `json:"overall_rating"` // 1-5，可为空
}

// AvailabilityBlock 可用性区块
type AvailabilityBlock struct {
	StartDate string           `json:"start_date"` // YYYY-MM-DD
	EndDate   string           `json:"end_date"`   // YYYY-MM-DD
	Type      AvailabilityType `json:"type"`
	Note      string           `json:"note,omitempty"`
}

// Covers 判断区块是否覆盖某天（闭区间）
func (b AvailabilityBlock) Covers(date string) bool {
	return DateRange{StartDate: b.StartDate, EndDate: b.EndDate}.ContainsDate(date)
}

// HasEMRSystem 判断顾问是否有某 EMR 系统的经验（扁平列表或详细记录）
func (c *Consultant) HasEMRSystem(system string) bool {
	for _, s := range c.EMRSystems {
		if NameMatches(s, system) {
			return true
		}
	}
	for _, exp := range c.EMRExperience {
		if NameMatches(exp.System, system) {
			return true
		}
	}
	return false
}

// FindEMRExperience 查找首条匹配的详细经验记录
func (c *Consultant) FindEMRExperience(system string) *EMRExperience {
	for i := range c.EMRExperience {
		if NameMatches(c.EMRExperience[i].System, system) {
			return &c.EMRExperience[i]
		}
	}
	return nil
}

// HasModule 判断顾问是否做过某模块（子串匹配）
func (c *Consultant) HasModule(module string) bool {
	for _, m := range c.Modules {
		if NameMatches(m, module) {
			return true
		}
	}
	return false
}

// HasCertification 判断顾问是否持有某认证（认证的 EMR 经验或技能）
func (c *Consultant) HasCertification(name string) bool {
	for _, exp := range c.EMRExperience {
		if exp.IsCertified && NameMatches(exp.System, name) {
			return true
		}
	}
	for _, s := range c.Skills {
		if s.IsCertified && (NameMatches(s.SkillID, name) || NameMatches(s.Name, name)) {
			return true
		}
	}
	return false
}
