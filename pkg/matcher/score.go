// Package matcher 提供顾问评分与推荐引擎
package matcher

import (
	"math"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/constraint"
	"github.com/paigong/paigong/pkg/model"
)

// EMR 分项上限（基础分 + 各项加成封顶）
const maxEMRScore = 145

// ScoreComponents 八维分项得分（各 0-100，EMR 可因加成超出并封顶于 145）
type ScoreComponents struct {
	EMR          float64 `json:"emr"`
	Module       float64 `json:"module"`
	Proficiency  float64 `json:"proficiency"`
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Shift        float64 `json:"shift"`
	Colleague    float64 `json:"colleague"`
	Location     float64 `json:"location"`
}

// ConsultantScoreResult 顾问评分结果
// 合格性只由硬约束决定，与分数高低无关
type ConsultantScoreResult struct {
	ConsultantID      uuid.UUID             `json:"consultant_id"`
	ConsultantName    string                `json:"consultant_name,omitempty"`
	Components        ScoreComponents       `json:"components"`
	TotalScore        float64               `json:"total_score"`
	FailedConstraints []constraint.FailCode `json:"failed_constraints"`
	Warnings          []string              `json:"warnings,omitempty"`
	IsEligible        bool                  `json:"is_eligible"`
	Rank              int                   `json:"rank"` // 合格者 1..N，不合格者 -1
}

// proficiencyMultiplier EMR 加成乘数表
func proficiencyMultiplier(p model.Proficiency) float64 {
	switch p {
	case model.ProficiencyExpert:
		return 1.2
	case model.ProficiencyAdvanced:
		return 1.0
	case model.ProficiencyIntermediate:
		return 0.7
	case model.ProficiencyBeginner:
		return 0.4
	default:
		return 0
	}
}

// proficiencyScore 熟练度分项得分表
func proficiencyScore(level int) float64 {
	switch level {
	case 4:
		return 100
	case 3:
		return 80
	case 2:
		return 60
	case 1:
		return 40
	default:
		return 0
	}
}

// round2 保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateComponents 计算八维分项得分（纯函数）
// 每个分项先独立保留两位小数，再参与加权
func CalculateComponents(c *model.Consultant, req *model.Requirement) ScoreComponents {
	return ScoreComponents{
		EMR:          round2(scoreEMR(c, req)),
		Module:       round2(scoreModule(c, req)),
		Proficiency:  round2(scoreProficiency(c, req)),
		Availability: round2(scoreAvailability(c, req)),
		Performance:  round2(scorePerformance(c)),
		Shift:        round2(scoreShift(c, req)),
		Colleague:    round2(scoreColleague(c, req)),
		Location:     round2(scoreLocation(c, req)),
	}
}

// WeightedTotal 计算加权总分
func (s ScoreComponents) WeightedTotal(w Weights) float64 {
	total := s.EMR*w.EMR +
		s.Module*w.Module +
		s.Proficiency*w.Proficiency +
		s.Availability*w.Availability +
		s.Performance*w.Performance +
		s.Shift*w.Shift +
		s.Colleague*w.Colleague +
		s.Location*w.Location
	return round2(total)
}

// scoreEMR EMR 经验分项
// 详细记录优先（首条匹配生效，不跨记录平均）：基础 100 + 熟练度加成 + 认证加成 + 年限加成；
// 仅扁平列表匹配时 80，无匹配 0
func scoreEMR(c *model.Consultant, req *model.Requirement) float64 {
	if req.HospitalEMR == "" {
		return 100
	}

	if exp := c.FindEMRExperience(req.HospitalEMR); exp != nil {
		score := 100.0
		score += 20 * proficiencyMultiplier(exp.Proficiency)
		if exp.IsCertified {
			score += 15
		}
		score += math.Min(exp.YearsExperience*2, 10)
		if score > maxEMRScore {
			score = maxEMRScore
		}
		return score
	}

	for _, s := range c.EMRSystems {
		if model.NameMatches(s, req.HospitalEMR) {
			return 80
		}
	}

	return 0
}

// scoreModule 模块经验分项
// 直接匹配 100；无直接匹配但有科室单元经验给 50 的通才分；否则 0
func scoreModule(c *model.Consultant, req *model.Requirement) float64 {
	if req.ModuleName == "" {
		return 100
	}
	if c.HasModule(req.ModuleName) {
		return 100
	}
	if len(c.Units) > 0 {
		return 50
	}
	return 0
}

// scoreProficiency 熟练度分项
// 取匹配设施 EMR 的经验记录与通用技能中的最高熟练度
func scoreProficiency(c *model.Consultant, req *model.Requirement) float64 {
	maxLevel := 0
	if req.HospitalEMR != "" {
		for _, exp := range c.EMRExperience {
			if model.NameMatches(exp.System, req.HospitalEMR) && exp.Proficiency.Level() > maxLevel {
				maxLevel = exp.Proficiency.Level()
			}
		}
	}
	for _, s := range c.Skills {
		if s.Proficiency.Level() > maxLevel {
			maxLevel = s.Proficiency.Level()
		}
	}
	return proficiencyScore(maxLevel)
}

// scoreAvailability 可用性分项
func scoreAvailability(c *model.Consultant, req *model.Requirement) float64 {
	if len(req.Dates) == 0 {
		return 100
	}
	avail := constraint.CheckDateAvailability(c, req.DateStrings())
	if !avail.Available {
		return 0
	}
	if avail.PartialAvailability {
		return 50
	}
	return 100
}

// scorePerformance 历史评价分项
// 无评价给 70 的中性分，不做惩罚
func scorePerformance(c *model.Consultant) float64 {
	avg := constraint.AverageRating(c.Ratings)
	if avg == nil {
		return 70
	}
	return math.Round(*avg / 5 * 100)
}

// scoreShift 班次偏好分项
func scoreShift(c *model.Consultant, req *model.Requirement) float64 {
	if req.ShiftType == "" || req.ShiftType == model.ShiftNone {
		return 100
	}
	switch constraint.CheckShiftPreference(c.ShiftPreference, req.ShiftType) {
	case constraint.ShiftMatchYes:
		return 100
	case constraint.ShiftMatchNo:
		return 30
	default:
		return 70
	}
}

// scoreColleague 同事偏好分项
// 无数据时 50 的中性分；有匹配时 min(100+25×匹配数, 150)
func scoreColleague(c *model.Consultant, req *model.Requirement) float64 {
	match := constraint.CheckColleaguePreference(c.PreferredColleagues, req.AlreadyAssignedConsultantIDs)
	if !match.HasPreferredColleague {
		return 50
	}
	return math.Min(100+25*float64(len(match.MatchedColleagues)), 150)
}

// scoreLocation 地理位置分项
func scoreLocation(c *model.Consultant, req *model.Requirement) float64 {
	switch constraint.CheckLocationProximity(c.State, req.HospitalState) {
	case constraint.ProximitySameState:
		return 100
	case constraint.ProximityDifferentState:
		return 30
	default:
		return 50
	}
}
