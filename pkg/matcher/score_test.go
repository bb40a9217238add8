package matcher

import (
	"testing"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

func epicRequirement() *model.Requirement {
	return &model.Requirement{
		ID:          uuid.New(),
		ProjectID:   uuid.New(),
		HospitalEMR: "Epic",
	}
}

func TestScoreEMR_DetailedExperience(t *testing.T) {
	req := epicRequirement()

	// 专家 + 认证 + 长年限命中 145 封顶
	c := &model.Consultant{
		EMRExperience: []model.EMRExperience{
			{System: "Epic", Proficiency: model.ProficiencyExpert, IsCertified: true, YearsExperience: 8},
		},
	}
	// 100 + 20*1.2 + 15 + min(16,10) = 149 -> 145
	if got := scoreEMR(c, req); got != 145 {
		t.Errorf("封顶应为 145，实际 %v", got)
	}

	// 中级无认证
	c = &model.Consultant{
		EMRExperience: []model.EMRExperience{
			{System: "Epic", Proficiency: model.ProficiencyIntermediate, YearsExperience: 2},
		},
	}
	// 100 + 20*0.7 + 0 + 4 = 118
	if got := scoreEMR(c, req); got != 118 {
		t.Errorf("中级2年应为 118，实际 %v", got)
	}
}

func TestScoreEMR_FirstMatchWins(t *testing.T) {
	req := epicRequirement()
	c := &model.Consultant{
		EMRExperience: []model.EMRExperience{
			{System: "Epic", Proficiency: model.ProficiencyBeginner},
			{System: "Epic", Proficiency: model.ProficiencyExpert, IsCertified: true, YearsExperience: 10},
		},
	}
	// 首条匹配生效：100 + 20*0.4 = 108
	if got := scoreEMR(c, req); got != 108 {
		t.Errorf("应以首条记录计分 108，实际 %v", got)
	}
}

func TestScoreEMR_FlatListAndMiss(t *testing.T) {
	req := epicRequirement()

	c := &model.Consultant{EMRSystems: []string{"Epic"}}
	if got := scoreEMR(c, req); got != 80 {
		t.Errorf("仅扁平列表匹配应为 80，实际 %v", got)
	}

	c = &model.Consultant{EMRSystems: []string{"Cerner"}}
	if got := scoreEMR(c, req); got != 0 {
		t.Errorf("无匹配应为 0，实际 %v", got)
	}

	// 需求未指定 EMR
	if got := scoreEMR(c, &model.Requirement{}); got != 100 {
		t.Errorf("需求未指定 EMR 应为 100，实际 %v", got)
	}
}

func TestScoreModule(t *testing.T) {
	req := &model.Requirement{ModuleName: "Willow"}

	c := &model.Consultant{Modules: []string{"Willow"}}
	if got := scoreModule(c, req); got != 100 {
		t.Errorf("直接匹配应为 100，实际 %v", got)
	}

	c = &model.Consultant{Units: []string{"ICU"}}
	if got := scoreModule(c, req); got != 50 {
		t.Errorf("科室单元通才分应为 50，实际 %v", got)
	}

	c = &model.Consultant{}
	if got := scoreModule(c, req); got != 0 {
		t.Errorf("无匹配应为 0，实际 %v", got)
	}

	if got := scoreModule(c, &model.Requirement{}); got != 100 {
		t.Errorf("需求未指定模块应为 100，实际 %v", got)
	}
}

func TestScoreProficiency(t *testing.T) {
	req := epicRequirement()

	// 取 EMR 匹配经验与通用技能中的最高级
	c := &model.Consultant{
		EMRExperience: []model.EMRExperience{
			{System: "Epic", Proficiency: model.ProficiencyIntermediate},
			{System: "Cerner", Proficiency: model.ProficiencyExpert}, // 不匹配设施EMR，不计入
		},
		Skills: []model.Skill{{SkillID: "go-live", Proficiency: model.ProficiencyAdvanced}},
	}
	if got := scoreProficiency(c, req); got != 80 {
		t.Errorf("最高级为 advanced 应得 80，实际 %v", got)
	}

	if got := scoreProficiency(&model.Consultant{}, req); got != 0 {
		t.Errorf("无任何记录应为 0，实际 %v", got)
	}
}

func TestScorePerformance(t *testing.T) {
	if got := scorePerformance(&model.Consultant{}); got != 70 {
		t.Errorf("无评价应为中性分 70，实际 %v", got)
	}

	r := 4.0
	c := &model.Consultant{Ratings: []model.Rating{{OverallRating: &r}}}
	if got := scorePerformance(c); got != 80 {
		t.Errorf("评分 4.0 应为 80，实际 %v", got)
	}
}

func TestScoreShift(t *testing.T) {
	req := &model.Requirement{ShiftType: model.ShiftNight}

	if got := scoreShift(&model.Consultant{ShiftPreference: model.ShiftNight}, req); got != 100 {
		t.Errorf("偏好一致应为 100，实际 %v", got)
	}
	if got := scoreShift(&model.Consultant{ShiftPreference: model.ShiftDay}, req); got != 30 {
		t.Errorf("偏好不一致应为 30，实际 %v", got)
	}
	if got := scoreShift(&model.Consultant{}, req); got != 70 {
		t.Errorf("无偏好应为 70，实际 %v", got)
	}
	if got := scoreShift(&model.Consultant{ShiftPreference: model.ShiftDay}, &model.Requirement{}); got != 100 {
		t.Errorf("需求未指定班次应为 100，实际 %v", got)
	}
}

func TestScoreColleague(t *testing.T) {
	friend := uuid.New()
	req := &model.Requirement{AlreadyAssignedConsultantIDs: []uuid.UUID{friend}}

	c := &model.Consultant{PreferredColleagues: []uuid.UUID{friend}}
	if got := scoreColleague(c, req); got != 125 {
		t.Errorf("1名偏好同事应为 125，实际 %v", got)
	}

	if got := scoreColleague(&model.Consultant{}, req); got != 50 {
		t.Errorf("无匹配应为中性分 50，实际 %v", got)
	}
}

func TestScoreLocation(t *testing.T) {
	req := &model.Requirement{HospitalState: "CA"}

	if got := scoreLocation(&model.Consultant{State: "CA"}, req); got != 100 {
		t.Errorf("同州应为 100，实际 %v", got)
	}
	if got := scoreLocation(&model.Consultant{State: "TX"}, req); got != 30 {
		t.Errorf("异州应为 30，实际 %v", got)
	}
	if got := scoreLocation(&model.Consultant{}, req); got != 50 {
		t.Errorf("信息缺失应为 50，实际 %v", got)
	}
}

func TestWeightedTotal(t *testing.T) {
	components := ScoreComponents{
		EMR: 100, Module: 100, Proficiency: 100, Availability: 100,
		Performance: 100, Shift: 100, Colleague: 100, Location: 100,
	}
	if got := components.WeightedTotal(DefaultWeights()); got != 100 {
		t.Errorf("全满分按默认权重应为 100，实际 %v", got)
	}
}

func TestCalculateComponents_Rounding(t *testing.T) {
	// 评分 3.33/5 -> math.Round(66.6) = 67
	r := 3.33
	c := &model.Consultant{Ratings: []model.Rating{{OverallRating: &r}}}
	components := CalculateComponents(c, &model.Requirement{})
	if components.Performance != 67 {
		t.Errorf("评分分项应为 67，实际 %v", components.Performance)
	}
}
