// Package constraint 提供顾问硬约束检查与软信号探针
package constraint

import (
	"context"
	"fmt"

	"github.com/paigong/paigong/pkg/model"
)

// FailCode 硬约束不通过代码
type FailCode string

const (
	FailNotAvailable         FailCode = "CONSULTANT_NOT_AVAILABLE"
	FailNotOnboarded         FailCode = "CONSULTANT_NOT_ONBOARDED"
	FailMissingEMRExperience FailCode = "MISSING_EMR_EXPERIENCE"
	FailDateUnavailable      FailCode = "DATE_UNAVAILABLE"
	FailScheduleConflict     FailCode = "SCHEDULE_CONFLICT"
	FailMissingCertification FailCode = "MISSING_CERTIFICATION"
	FailBelowRatingThreshold FailCode = "BELOW_RATING_THRESHOLD"
)

// Options 硬约束检查选项（由调用方按需求补充）
type Options struct {
	RequiredCertifications []string `json:"required_certifications,omitempty"`
	MinRating              *float64 `json:"min_rating,omitempty"`
}

// Result 硬约束检查结果
// 所有适用规则都会被评估，不会在首个失败处短路
type Result struct {
	Passed              bool       `json:"passed"`
	FailedConstraints   []FailCode `json:"failed_constraints"`
	Warnings            []string   `json:"warnings,omitempty"`
	PartialAvailability bool       `json:"partial_availability,omitempty"`
}

// Checker 硬约束检查器
// 除排班冲突查询外全部为纯函数
type Checker struct {
	conflicts ConflictChecker
}

// NewChecker 创建硬约束检查器
func NewChecker(conflicts ConflictChecker) *Checker {
	return &Checker{conflicts: conflicts}
}

// CheckHardConstraints 检查顾问对需求的全部硬约束
// 逐条评估并累积所有不通过的代码，调用方可一次性看到全部原因
func (c *Checker) CheckHardConstraints(ctx context.Context, consultant *model.Consultant, req *model.Requirement, opts Options) (*Result, error) {
	result := &Result{
		FailedConstraints: make([]FailCode, 0),
		Warnings:          make([]string, 0),
	}

	// 1. 可用状态
	if !consultant.IsAvailable {
		result.FailedConstraints = append(result.FailedConstraints, FailNotAvailable)
	}

	// 2. 入职状态
	if !consultant.IsOnboarded {
		result.FailedConstraints = append(result.FailedConstraints, FailNotOnboarded)
	}

	// 3. EMR 经验（需求未指定 EMR 则自动通过）
	if req.HospitalEMR != "" && !consultant.HasEMRSystem(req.HospitalEMR) {
		result.FailedConstraints = append(result.FailedConstraints, FailMissingEMRExperience)
	}

	// 4. 日期可用性
	avail := CheckDateAvailability(consultant, req.DateStrings())
	if !avail.Available {
		result.FailedConstraints = append(result.FailedConstraints, FailDateUnavailable)
	}
	if avail.PartialAvailability {
		result.PartialAvailability = true
		for _, conflict := range avail.Conflicts {
			if conflict.Type == model.AvailabilityTraining {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("顾问 %s 在 %s 有培训安排，仅部分可用", consultant.ID, conflict.Date))
			}
		}
	}

	// 5. 排班冲突（唯一需要外部状态的检查）
	if c.conflicts != nil && len(req.Dates) > 0 {
		conflicts, err := c.conflicts.FindConflicts(ctx, consultant.ID, req.DateStrings(), req.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("查询排班冲突失败: %w", err)
		}
		if len(conflicts) > 0 {
			result.FailedConstraints = append(result.FailedConstraints, FailScheduleConflict)
		}
	}

	// 6. 必需认证
	for _, cert := range opts.RequiredCertifications {
		if !consultant.HasCertification(cert) {
			result.FailedConstraints = append(result.FailedConstraints, FailMissingCertification)
			break
		}
	}

	// 7. 最低评分（无评价记录的顾问不受阈值约束）
	if opts.MinRating != nil {
		if avg := AverageRating(consultant.Ratings); avg != nil && *avg < *opts.MinRating {
			result.FailedConstraints = append(result.FailedConstraints, FailBelowRatingThreshold)
		}
	}

	result.Passed = len(result.FailedConstraints) == 0
	return result, nil
}
