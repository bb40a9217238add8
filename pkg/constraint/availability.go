// Package constraint 提供顾问硬约束检查与软信号探针
package constraint

import (
	"github.com/paigong/paigong/pkg/model"
)

// DateConflict 日期可用性冲突
type DateConflict struct {
	Date string                 `json:"date"`
	Type model.AvailabilityType `json:"type"`
	Note string                 `json:"note,omitempty"`
}

// Availability 日期可用性检查结果
type Availability struct {
	Available           bool           `json:"available"`
	Conflicts           []DateConflict `json:"conflicts,omitempty"`
	PartialAvailability bool           `json:"partial_availability"`
}

// CheckDateAvailability 检查顾问在目标日期集合上的可用性
// 区块为闭区间；unavailable/vacation/sick 阻断，training 仅产生部分可用标记；
// 无任何区块时默认完全可用（开放世界假设）
func CheckDateAvailability(consultant *model.Consultant, dates []string) Availability {
	result := Availability{
		Available: true,
		Conflicts: make([]DateConflict, 0),
	}

	if len(consultant.Availability) == 0 || len(dates) == 0 {
		return result
	}

	for _, date := range dates {
		for _, block := range consultant.Availability {
			if !block.Covers(date) {
				continue
			}
			conflict := DateConflict{Date: date, Type: block.Type, Note: block.Note}
			result.Conflicts = append(result.Conflicts, conflict)
			if block.Type.IsBlocking() {
				result.Available = false
			} else if block.Type == model.AvailabilityTraining {
				result.PartialAvailability = true
			}
		}
	}

	return result
}
