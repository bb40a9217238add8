// Package constraint 提供顾问硬约束检查与软信号探针
package constraint

import (
	"strings"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// ShiftMatch 班次偏好匹配结果
type ShiftMatch string

const (
	ShiftMatchYes       ShiftMatch = "match"         // 偏好一致
	ShiftMatchNo        ShiftMatch = "mismatch"      // 偏好不一致
	ShiftNoPreference   ShiftMatch = "no_preference" // 任一方未设置
)

// Proximity 地理位置接近度
type Proximity string

const (
	ProximitySameState      Proximity = "same_state"      // 同州
	ProximityDifferentState Proximity = "different_state" // 异州
	ProximityUnknown        Proximity = "unknown"         // 信息缺失
)

// ColleagueMatch 同事偏好匹配结果
type ColleagueMatch struct {
	HasPreferredColleague bool        `json:"has_preferred_colleague"`
	MatchedColleagues     []uuid.UUID `json:"matched_colleagues,omitempty"`
}

// AverageRating 计算非空评价的算术平均值
// 无任何非空评价时返回 nil，不做四舍五入
func AverageRating(ratings []model.Rating) *float64 {
	var sum float64
	var count int
	for _, r := range ratings {
		if r.OverallRating != nil {
			sum += *r.OverallRating
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// CheckShiftPreference 检查班次偏好匹配
func CheckShiftPreference(pref, required model.ShiftType) ShiftMatch {
	if pref == "" || pref == model.ShiftNone || required == "" || required == model.ShiftNone {
		return ShiftNoPreference
	}
	if pref == required {
		return ShiftMatchYes
	}
	return ShiftMatchNo
}

// CheckColleaguePreference 检查偏好同事是否已在本需求中（集合交集）
func CheckColleaguePreference(preferred, alreadyAssigned []uuid.UUID) ColleagueMatch {
	match := ColleagueMatch{MatchedColleagues: make([]uuid.UUID, 0)}
	if len(preferred) == 0 || len(alreadyAssigned) == 0 {
		return match
	}

	assigned := make(map[uuid.UUID]bool, len(alreadyAssigned))
	for _, id := range alreadyAssigned {
		assigned[id] = true
	}

	for _, id := range preferred {
		if assigned[id] {
			match.MatchedColleagues = append(match.MatchedColleagues, id)
		}
	}

	match.HasPreferredColleague = len(match.MatchedColleagues) > 0
	return match
}

// CheckLocationProximity 检查顾问与医院的地理接近度
// 州比较去除首尾空白且大小写不敏感
func CheckLocationProximity(consultantState, hospitalState string) Proximity {
	cs := strings.TrimSpace(consultantState)
	hs := strings.TrimSpace(hospitalState)
	if cs == "" || hs == "" {
		return ProximityUnknown
	}
	if strings.EqualFold(cs, hs) {
		return ProximitySameState
	}
	return ProximityDifferentState
}
