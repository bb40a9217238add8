// Package matcher 提供顾问评分与推荐引擎
package matcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/constraint"
	"github.com/paigong/paigong/pkg/logger"
	"github.com/paigong/paigong/pkg/model"
)

// DefaultRecommendationTTLHours 推荐缓存默认过期时间（小时）
const DefaultRecommendationTTLHours = 24

// Engine 评分推荐引擎
// 引擎自身无内部状态，可安全并发用于相互独立的运行
type Engine struct {
	store   Store
	checker *constraint.Checker
	weights Weights
	opts    constraint.Options
	log     *logger.MatchLogger
}

// NewEngine 创建评分推荐引擎（默认权重）
func NewEngine(store Store) *Engine {
	return &Engine{
		store:   store,
		checker: constraint.NewChecker(constraint.NewStoreConflictChecker(store)),
		weights: DefaultWeights(),
		log:     logger.NewMatchLogger(),
	}
}

// WithWeights 覆盖本引擎的评分权重
func (e *Engine) WithWeights(w Weights) *Engine {
	e.weights = w
	return e
}

// WithOptions 设置硬约束检查选项
func (e *Engine) WithOptions(opts constraint.Options) *Engine {
	e.opts = opts
	return e
}

// Weights 返回当前权重集
func (e *Engine) Weights() Weights {
	return e.weights
}

// RecommendationResult 单个需求的推荐结果
type RecommendationResult struct {
	RequirementID  uuid.UUID               `json:"requirement_id"`
	Consultants    []ConsultantScoreResult `json:"consultants"`
	TotalEvaluated int                     `json:"total_evaluated"`
	TotalEligible  int                     `json:"total_eligible"`
	GeneratedAt    time.Time               `json:"generated_at"`
}

// CalculateConsultantScore 计算单个顾问对需求的评分（只读）
func (e *Engine) CalculateConsultantScore(ctx context.Context, c *model.Consultant, req *model.Requirement) (*ConsultantScoreResult, error) {
	check, err := e.checker.CheckHardConstraints(ctx, c, req, e.opts)
	if err != nil {
		return nil, err
	}

	components := CalculateComponents(c, req)

	return &ConsultantScoreResult{
		ConsultantID:      c.ID,
		ConsultantName:    c.Name,
		Components:        components,
		TotalScore:        components.WeightedTotal(e.weights),
		FailedConstraints: check.FailedConstraints,
		Warnings:          check.Warnings,
		IsEligible:        check.Passed,
		Rank:              -1,
	}, nil
}

// GetRecommendations 对单个需求产出完整的排序推荐列表（只读，无副作用）
// 排序键：合格优先，其次总分降序；同分按顾问ID升序保证确定性
func (e *Engine) GetRecommendations(ctx context.Context, req *model.Requirement) (*RecommendationResult, error) {
	if err := e.weights.Validate(); err != nil {
		return nil, err
	}

	consultants, err := e.store.GetConsultantsWithFullDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取顾问列表失败: %w", err)
	}

	e.log.StartRun(string(model.RunModeRecommendation), req.ID.String(), len(consultants))

	results := make([]ConsultantScoreResult, 0, len(consultants))
	for _, c := range consultants {
		score, err := e.CalculateConsultantScore(ctx, c, req)
		if err != nil {
			return nil, err
		}
		if !score.IsEligible {
			e.log.ConstraintFailed(c.ID.String(), failCodeStrings(score.FailedConstraints))
		}
		results = append(results, *score)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].IsEligible != results[j].IsEligible {
			return results[i].IsEligible
		}
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].ConsultantID.String() < results[j].ConsultantID.String()
	})

	eligible := 0
	for i := range results {
		if results[i].IsEligible {
			eligible++
			results[i].Rank = eligible
		} else {
			results[i].Rank = -1
		}
	}

	return &RecommendationResult{
		RequirementID:  req.ID,
		Consultants:    results,
		TotalEvaluated: len(results),
		TotalEligible:  eligible,
		GeneratedAt:    time.Now(),
	}, nil
}

// EligibleInRankOrder 返回推荐结果中合格顾问的有序子集
func (r *RecommendationResult) EligibleInRankOrder(limit int) []ConsultantScoreResult {
	eligible := make([]ConsultantScoreResult, 0, limit)
	for _, s := range r.Consultants {
		if !s.IsEligible {
			continue
		}
		eligible = append(eligible, s)
		if limit > 0 && len(eligible) >= limit {
			break
		}
	}
	return eligible
}

// SaveRecommendations 将推荐结果写入缓存（尽力而为的旁路写）
func (e *Engine) SaveRecommendations(ctx context.Context, result *RecommendationResult, scheduleID *uuid.UUID, expiresInHours int) error {
	if expiresInHours <= 0 {
		expiresInHours = DefaultRecommendationTTLHours
	}
	expiresAt := time.Now().Add(time.Duration(expiresInHours) * time.Hour)

	records := make([]model.SchedulingRecommendation, 0, len(result.Consultants))
	for _, s := range result.Consultants {
		records = append(records, model.SchedulingRecommendation{
			ID:            uuid.New(),
			RequirementID: result.RequirementID,
			ScheduleID:    scheduleID,
			ConsultantID:  s.ConsultantID,
			Rank:          s.Rank,
			TotalScore:    s.TotalScore,
			IsEligible:    s.IsEligible,
			ExpiresAt:     expiresAt,
			CreatedAt:     time.Now(),
		})
	}

	if err := e.store.SaveSchedulingRecommendations(ctx, records); err != nil {
		return fmt.Errorf("保存推荐缓存失败: %w", err)
	}
	return nil
}

// CreateAssignmentLog 写入一次调度运行的审计日志
func (e *Engine) CreateAssignmentLog(ctx context.Context, projectID uuid.UUID, scheduleID *uuid.UUID, userID string, mode model.RunMode, evaluated, eligible, assigned, conflicts int, status string) error {
	entry := &model.AutoAssignLog{
		ID:              uuid.New(),
		ProjectID:       projectID,
		ScheduleID:      scheduleID,
		UserID:          userID,
		Mode:            mode,
		TotalEvaluated:  evaluated,
		TotalEligible:   eligible,
		AssignmentsMade: assigned,
		ConflictsFound:  conflicts,
		Weights:         e.weights.ToMap(),
		Status:          status,
		CreatedAt:       time.Now(),
	}
	if err := e.store.CreateAutoAssignmentLog(ctx, entry); err != nil {
		return fmt.Errorf("写入审计日志失败: %w", err)
	}
	return nil
}

// failCodeStrings 约束代码转字符串切片
func failCodeStrings(codes []constraint.FailCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
