package stats

import (
	"testing"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/assigner"
	"github.com/paigong/paigong/pkg/model"
)

func TestAnalyzeFill_SnapshotOnly(t *testing.T) {
	full := &model.Requirement{
		ID:                           uuid.New(),
		ConsultantsNeeded:            2,
		AlreadyAssignedConsultantIDs: []uuid.UUID{uuid.New(), uuid.New()},
	}
	partial := &model.Requirement{
		ID:                           uuid.New(),
		ConsultantsNeeded:            3,
		AlreadyAssignedConsultantIDs: []uuid.UUID{uuid.New()},
	}
	empty := &model.Requirement{ID: uuid.New(), ConsultantsNeeded: 2}

	metrics := AnalyzeFill([]*model.Requirement{full, partial, empty}, nil)

	if metrics.TotalRequirements != 3 {
		t.Errorf("需求总数应为3，实际 %d", metrics.TotalRequirements)
	}
	if metrics.FullyStaffed != 1 || metrics.PartiallyStaffed != 1 || metrics.Unfilled != 1 {
		t.Errorf("满员/部分/无人应为 1/1/1，实际 %d/%d/%d",
			metrics.FullyStaffed, metrics.PartiallyStaffed, metrics.Unfilled)
	}
	if metrics.ConsultantsNeeded != 7 || metrics.ConsultantsAssigned != 3 {
		t.Errorf("需求/落实人数应为 7/3，实际 %d/%d", metrics.ConsultantsNeeded, metrics.ConsultantsAssigned)
	}
}

func TestAnalyzeFill_WithRunResult(t *testing.T) {
	consultant := uuid.New()
	req := &model.Requirement{ID: uuid.New(), ConsultantsNeeded: 2}

	result := &assigner.Result{
		Assignments: []assigner.MadeAssignment{
			{RequirementID: req.ID, ConsultantID: consultant},
			{RequirementID: req.ID, ConsultantID: uuid.New()},
		},
	}

	metrics := AnalyzeFill([]*model.Requirement{req}, result)

	if metrics.FullyStaffed != 1 {
		t.Errorf("叠加运行结果后应满员，实际满员 %d", metrics.FullyStaffed)
	}
	if metrics.FillRate != 100 {
		t.Errorf("填充率应为100，实际 %v", metrics.FillRate)
	}
	if metrics.AssignmentsPerConsultant[consultant] != 1 {
		t.Error("应统计各顾问的指派数")
	}
	if metrics.Requirements[0].StillNeeded != 0 {
		t.Errorf("尚缺人数应为0，实际 %d", metrics.Requirements[0].StillNeeded)
	}
}

func TestAnalyzeFill_Empty(t *testing.T) {
	metrics := AnalyzeFill(nil, nil)
	if metrics.FillRate != 100 {
		t.Errorf("无需求时填充率应为100，实际 %v", metrics.FillRate)
	}
	if metrics.TotalRequirements != 0 {
		t.Errorf("需求总数应为0，实际 %d", metrics.TotalRequirements)
	}
}
