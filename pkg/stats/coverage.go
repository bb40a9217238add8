// Package stats 提供派工填充统计分析
package stats

import (
	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/assigner"
	"github.com/paigong/paigong/pkg/model"
)

// FillMetrics 项目人员填充指标
type FillMetrics struct {
	// 整体填充
	TotalRequirements   int     `json:"total_requirements"`   // 总需求数
	FullyStaffed        int     `json:"fully_staffed"`        // 满员需求数
	PartiallyStaffed    int     `json:"partially_staffed"`    // 部分满员需求数
	Unfilled            int     `json:"unfilled"`             // 无人需求数
	ConsultantsNeeded   int     `json:"consultants_needed"`   // 需求总人数
	ConsultantsAssigned int     `json:"consultants_assigned"` // 已落实人数（含本次运行）
	FillRate            float64 `json:"fill_rate"`            // 填充率 (%)

	// 按需求明细
	Requirements []RequirementFill `json:"requirements"`

	// 本次运行内各顾问获得的指派数
	AssignmentsPerConsultant map[uuid.UUID]int `json:"assignments_per_consultant,omitempty"`
}

// RequirementFill 单个需求的填充情况
type RequirementFill struct {
	RequirementID uuid.UUID `json:"requirement_id"`
	Needed        int       `json:"needed"`
	Assigned      int       `json:"assigned"`
	StillNeeded   int       `json:"still_needed"`
}

// AnalyzeFill 汇总一次自动指派运行后的项目填充情况
// result 可为 nil，此时只统计需求快照自身的已指派状态
func AnalyzeFill(requirements []*model.Requirement, result *assigner.Result) *FillMetrics {
	metrics := &FillMetrics{
		TotalRequirements:        len(requirements),
		Requirements:             make([]RequirementFill, 0, len(requirements)),
		AssignmentsPerConsultant: make(map[uuid.UUID]int),
	}

	// 本次运行产生的指派按需求归并
	madeByRequirement := make(map[uuid.UUID]int)
	if result != nil {
		for _, a := range result.Assignments {
			madeByRequirement[a.RequirementID]++
			metrics.AssignmentsPerConsultant[a.ConsultantID]++
		}
	}

	for _, req := range requirements {
		assigned := len(req.AlreadyAssignedConsultantIDs) + madeByRequirement[req.ID]
		still := req.ConsultantsNeeded - assigned
		if still < 0 {
			still = 0
		}

		metrics.ConsultantsNeeded += req.ConsultantsNeeded
		metrics.ConsultantsAssigned += assigned

		switch {
		case req.ConsultantsNeeded == 0 || still == 0:
			metrics.FullyStaffed++
		case assigned > 0:
			metrics.PartiallyStaffed++
		default:
			metrics.Unfilled++
		}

		metrics.Requirements = append(metrics.Requirements, RequirementFill{
			RequirementID: req.ID,
			Needed:        req.ConsultantsNeeded,
			Assigned:      assigned,
			StillNeeded:   still,
		})
	}

	if metrics.ConsultantsNeeded > 0 {
		rate := float64(metrics.ConsultantsAssigned) / float64(metrics.ConsultantsNeeded) * 100
		if rate > 100 {
			rate = 100
		}
		metrics.FillRate = rate
	} else {
		metrics.FillRate = 100
	}

	return metrics
}
