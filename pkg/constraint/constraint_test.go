package constraint

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// fakeAssignmentSource 内存指派数据源
type fakeAssignmentSource struct {
	assignments []model.AssignmentWithSchedule
	err         error
}

func (f *fakeAssignmentSource) GetConsultantAssignments(ctx context.Context, consultantID uuid.UUID) ([]model.AssignmentWithSchedule, error) {
	return f.assignments, f.err
}

func availableConsultant() *model.Consultant {
	return &model.Consultant{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		Name:        "陈顾问",
		IsAvailable: true,
		IsOnboarded: true,
		EMRSystems:  []string{"Epic"},
	}
}

func requirementFor(emr string, dates ...string) *model.Requirement {
	req := &model.Requirement{
		ID:                uuid.New(),
		ProjectID:         uuid.New(),
		HospitalEMR:       emr,
		ConsultantsNeeded: 1,
	}
	for _, d := range dates {
		req.Dates = append(req.Dates, model.RequirementDate{Date: d})
	}
	return req
}

func hasFailCode(codes []FailCode, want FailCode) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}

func TestCheckHardConstraints_AllPass(t *testing.T) {
	checker := NewChecker(nil)

	result, err := checker.CheckHardConstraints(context.Background(), availableConsultant(), requirementFor("Epic", "2026-09-01"), Options{})
	if err != nil {
		t.Fatalf("检查失败: %v", err)
	}
	if !result.Passed {
		t.Errorf("应全部通过，实际不通过: %v", result.FailedConstraints)
	}
}

func TestCheckHardConstraints_AccumulatesAllFailures(t *testing.T) {
	checker := NewChecker(nil)

	// 同时触发可用状态、入职状态和 EMR 经验三条
	c := availableConsultant()
	c.IsAvailable = false
	c.IsOnboarded = false
	c.EMRSystems = nil

	result, err := checker.CheckHardConstraints(context.Background(), c, requirementFor("Epic"), Options{})
	if err != nil {
		t.Fatalf("检查失败: %v", err)
	}
	if result.Passed {
		t.Fatal("应不通过")
	}
	if len(result.FailedConstraints) != 3 {
		t.Errorf("应累积3条不通过代码，实际 %d: %v", len(result.FailedConstraints), result.FailedConstraints)
	}
	for _, want := range []FailCode{FailNotAvailable, FailNotOnboarded, FailMissingEMRExperience} {
		if !hasFailCode(result.FailedConstraints, want) {
			t.Errorf("缺少代码 %s", want)
		}
	}
}

func TestCheckHardConstraints_EMRFromDetailedExperience(t *testing.T) {
	checker := NewChecker(nil)

	c := availableConsultant()
	c.EMRSystems = nil
	c.EMRExperience = []model.EMRExperience{{System: "Epic", Proficiency: model.ProficiencyAdvanced}}

	result, err := checker.CheckHardConstraints(context.Background(), c, requirementFor("Epic"), Options{})
	if err != nil {
		t.Fatalf("检查失败: %v", err)
	}
	if hasFailCode(result.FailedConstraints, FailMissingEMRExperience) {
		t.Error("详细经验记录应满足 EMR 约束")
	}
}

func TestCheckHardConstraints_NoEMRRequired(t *testing.T) {
	checker := NewChecker(nil)

	c := availableConsultant()
	c.EMRSystems = nil

	result, _ := checker.CheckHardConstraints(context.Background(), c, requirementFor(""), Options{})
	if hasFailCode(result.FailedConstraints, FailMissingEMRExperience) {
		t.Error("需求未指定 EMR 时不应检查 EMR 经验")
	}
}

func TestCheckHardConstraints_DateUnavailable(t *testing.T) {
	checker := NewChecker(nil)

	c := availableConsultant()
	c.Availability = []model.AvailabilityBlock{
		{StartDate: "2026-09-01", EndDate: "2026-09-05", Type: model.AvailabilityVacation},
	}

	result, _ := checker.CheckHardConstraints(context.Background(), c, requirementFor("Epic", "2026-09-03"), Options{})
	if !hasFailCode(result.FailedConstraints, FailDateUnavailable) {
		t.Error("休假日期应触发 DATE_UNAVAILABLE")
	}
}

func TestCheckHardConstraints_TrainingOnlyWarns(t *testing.T) {
	checker := NewChecker(nil)

	c := availableConsultant()
	c.Availability = []model.AvailabilityBlock{
		{StartDate: "2026-09-01", EndDate: "2026-09-01", Type: model.AvailabilityTraining},
	}

	result, _ := checker.CheckHardConstraints(context.Background(), c, requirementFor("Epic", "2026-09-01"), Options{})
	if !result.Passed {
		t.Errorf("培训不应阻断: %v", result.FailedConstraints)
	}
	if !result.PartialAvailability {
		t.Error("培训应标记部分可用")
	}
	if len(result.Warnings) == 0 {
		t.Error("培训应产生警告")
	}
}

func TestCheckHardConstraints_ScheduleConflict(t *testing.T) {
	otherProject := uuid.New()
	source := &fakeAssignmentSource{
		assignments: []model.AssignmentWithSchedule{
			{
				ScheduleProjectID: otherProject,
				ScheduleDate:      "2026-09-01",
				ScheduleStatus:    model.ScheduleStatusConfirmed,
			},
		},
	}
	checker := NewChecker(NewStoreConflictChecker(source))

	result, err := checker.CheckHardConstraints(context.Background(), availableConsultant(), requirementFor("Epic", "2026-09-01"), Options{})
	if err != nil {
		t.Fatalf("检查失败: %v", err)
	}
	if !hasFailCode(result.FailedConstraints, FailScheduleConflict) {
		t.Error("其他项目同日排班应触发 SCHEDULE_CONFLICT")
	}
}

func TestCheckHardConstraints_SameProjectNoConflict(t *testing.T) {
	req := requirementFor("Epic", "2026-09-01")
	source := &fakeAssignmentSource{
		assignments: []model.AssignmentWithSchedule{
			{
				ScheduleProjectID: req.ProjectID,
				ScheduleDate:      "2026-09-01",
				ScheduleStatus:    model.ScheduleStatusConfirmed,
			},
		},
	}
	checker := NewChecker(NewStoreConflictChecker(source))

	result, _ := checker.CheckHardConstraints(context.Background(), availableConsultant(), req, Options{})
	if hasFailCode(result.FailedConstraints, FailScheduleConflict) {
		t.Error("本项目内的排班不应算冲突")
	}
}

func TestCheckHardConstraints_MissingCertification(t *testing.T) {
	checker := NewChecker(nil)

	result, _ := checker.CheckHardConstraints(context.Background(), availableConsultant(), requirementFor("Epic"),
		Options{RequiredCertifications: []string{"Epic Willow"}})
	if !hasFailCode(result.FailedConstraints, FailMissingCertification) {
		t.Error("缺少必需认证应触发 MISSING_CERTIFICATION")
	}

	c := availableConsultant()
	c.EMRExperience = []model.EMRExperience{{System: "Epic Willow", IsCertified: true}}
	result, _ = checker.CheckHardConstraints(context.Background(), c, requirementFor("Epic"),
		Options{RequiredCertifications: []string{"Epic Willow"}})
	if hasFailCode(result.FailedConstraints, FailMissingCertification) {
		t.Error("持有认证不应触发 MISSING_CERTIFICATION")
	}
}

func TestCheckHardConstraints_RatingThreshold(t *testing.T) {
	checker := NewChecker(nil)
	min := 4.0
	low := 3.0
	high := 4.5

	// 低于阈值
	c := availableConsultant()
	c.Ratings = []model.Rating{{OverallRating: &low}}
	result, _ := checker.CheckHardConstraints(context.Background(), c, requirementFor("Epic"), Options{MinRating: &min})
	if !hasFailCode(result.FailedConstraints, FailBelowRatingThreshold) {
		t.Error("低评分应触发 BELOW_RATING_THRESHOLD")
	}

	// 高于阈值
	c = availableConsultant()
	c.Ratings = []model.Rating{{OverallRating: &high}}
	result, _ = checker.CheckHardConstraints(context.Background(), c, requirementFor("Epic"), Options{MinRating: &min})
	if hasFailCode(result.FailedConstraints, FailBelowRatingThreshold) {
		t.Error("高评分不应触发阈值约束")
	}

	// 无评价记录的顾问不受阈值约束
	c = availableConsultant()
	result, _ = checker.CheckHardConstraints(context.Background(), c, requirementFor("Epic"), Options{MinRating: &min})
	if hasFailCode(result.FailedConstraints, FailBelowRatingThreshold) {
		t.Error("无评价顾问不应受阈值约束")
	}
}
