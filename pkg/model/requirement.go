// Package model 定义派工引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Requirement 人员需求（某医院某班次需要 N 名顾问，附带设施上下文）
// 由存储层按调度运行构建的只读快照，引擎不修改
type Requirement struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ProjectID uuid.UUID  `json:"project_id" db:"project_id"`
	UnitID    *uuid.UUID `json:"unit_id,omitempty" db:"unit_id"`
	ModuleID  *uuid.UUID `json:"module_id,omitempty" db:"module_id"`

	// 设施上下文（从医院继承）
	HospitalEMR   string `json:"hospital_emr,omitempty" db:"hospital_emr"`
	HospitalState string `json:"hospital_state,omitempty" db:"hospital_state"`
	ModuleName    string `json:"module_name,omitempty" db:"module_name"`

	// 排班要求
	ShiftType         ShiftType         `json:"shift_type,omitempty" db:"shift_type"`
	Dates             []RequirementDate `json:"dates,omitempty" db:"dates"`
	ConsultantsNeeded int               `json:"consultants_needed" db:"consultants_needed"`

	// 已指派到本需求的顾问
	AlreadyAssignedConsultantIDs []uuid.UUID `json:"already_assigned_consultant_ids,omitempty" db:"-"`
}

// RequirementDate 需求目标日期
type RequirementDate struct {
	Date      string    `json:"date"` // YYYY-MM-DD
	ShiftType ShiftType `json:"shift_type,omitempty"`
}

// StillNeeded 计算尚缺人数
func (r *Requirement) StillNeeded() int {
	n := r.ConsultantsNeeded - len(r.AlreadyAssignedConsultantIDs)
	if n < 0 {
		return 0
	}
	return n
}

// DateStrings 返回需求的所有目标日期
func (r *Requirement) DateStrings() []string {
	dates := make([]string, 0, len(r.Dates))
	for _, d := range r.Dates {
		dates = append(dates, d.Date)
	}
	return dates
}

// IsAssigned 判断顾问是否已指派到本需求
func (r *Requirement) IsAssigned(consultantID uuid.UUID) bool {
	for _, id := range r.AlreadyAssignedConsultantIDs {
		if id == consultantID {
			return true
		}
	}
	return false
}
