// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/internal/config"
	"github.com/paigong/paigong/internal/metrics"
	"github.com/paigong/paigong/pkg/assigner"
	"github.com/paigong/paigong/pkg/constraint"
	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/matcher"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/stats"
)

// MatchingHandler 匹配与指派处理器
type MatchingHandler struct {
	store matcher.Store
	cfg   *config.MatcherConfig
}

// NewMatchingHandler 创建匹配处理器
func NewMatchingHandler(store matcher.Store, cfg *config.MatcherConfig) *MatchingHandler {
	return &MatchingHandler{store: store, cfg: cfg}
}

// RecommendRequest 推荐请求
type RecommendRequest struct {
	ProjectID     string `json:"project_id"`
	RequirementID string `json:"requirement_id"`

	// 可选覆盖项
	Weights                *matcher.Weights `json:"weights,omitempty"`
	RequiredCertifications []string         `json:"required_certifications,omitempty"`
	MinRating              *float64         `json:"min_rating,omitempty"`
	UserID                 string           `json:"user_id,omitempty"`

	// Persist 为真时写入推荐缓存并记录运行日志
	Persist bool `json:"persist,omitempty"`
	TTL     int  `json:"ttl_hours,omitempty"`
}

// RecommendResponse 推荐响应
type RecommendResponse struct {
	RequirementID  string                          `json:"requirement_id"`
	Consultants    []matcher.ConsultantScoreResult `json:"consultants"`
	TotalEvaluated int                             `json:"total_evaluated"`
	TotalEligible  int                             `json:"total_eligible"`
	GeneratedAt    time.Time                       `json:"generated_at"`
}

// Recommend 生成需求的顾问推荐列表
func (h *MatchingHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的项目ID格式"))
		return
	}
	requirementID, err := uuid.Parse(req.RequirementID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的需求ID格式"))
		return
	}

	engine := h.buildEngine(req.Weights, req.RequiredCertifications, req.MinRating)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	requirement, appErr := h.findRequirement(ctx, projectID, requirementID)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	start := time.Now()
	result, err := engine.GetRecommendations(ctx, requirement)
	if err != nil {
		metrics.RecordMatchingRun(string(model.RunModeRecommendation), false, time.Since(start))
		respondAnyError(w, err)
		return
	}
	metrics.RecordMatchingRun(string(model.RunModeRecommendation), true, time.Since(start))
	for _, c := range result.Consultants {
		if c.IsEligible {
			continue
		}
		for _, code := range c.FailedConstraints {
			metrics.RecordConstraintEvaluation(string(code), false)
		}
	}

	if req.Persist {
		ttl := req.TTL
		if ttl <= 0 && h.cfg != nil {
			ttl = h.cfg.RecommendationTTLHour
		}
		if err := engine.SaveRecommendations(ctx, result, nil, ttl); err != nil {
			respondAnyError(w, err)
			return
		}
		if err := engine.CreateAssignmentLog(ctx, projectID, nil, req.UserID, model.RunModeRecommendation,
			result.TotalEvaluated, result.TotalEligible, 0, 0, "completed"); err != nil {
			respondAnyError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, RecommendResponse{
		RequirementID:  result.RequirementID.String(),
		Consultants:    result.Consultants,
		TotalEvaluated: result.TotalEvaluated,
		TotalEligible:  result.TotalEligible,
		GeneratedAt:    result.GeneratedAt,
	})
}

// AutoAssignRequest 自动指派请求
type AutoAssignRequest struct {
	ProjectID string `json:"project_id"`
	DryRun    bool   `json:"dry_run,omitempty"`
	UserID    string `json:"user_id,omitempty"`

	// 可选覆盖项
	Weights                *matcher.Weights `json:"weights,omitempty"`
	RequiredCertifications []string         `json:"required_certifications,omitempty"`
	MinRating              *float64         `json:"min_rating,omitempty"`
	MaxPerConsultant       int              `json:"max_per_consultant,omitempty"`
	RequirementIDs         []string         `json:"requirement_ids,omitempty"`
}

// AutoAssignResponse 自动指派响应
type AutoAssignResponse struct {
	ProjectID       string                    `json:"project_id"`
	DryRun          bool                      `json:"dry_run"`
	AssignmentsMade int                       `json:"assignments_made"`
	ConflictsFound  int                       `json:"conflicts_found"`
	TotalEvaluated  int                       `json:"total_evaluated"`
	TotalEligible   int                       `json:"total_eligible"`
	Assignments     []assigner.MadeAssignment `json:"assignments"`
	Skipped         []assigner.Skipped        `json:"skipped,omitempty"`
	Fill            *stats.FillMetrics        `json:"fill,omitempty"`
	Duration        string                    `json:"duration"`
}

// AutoAssign 执行项目级自动指派
// 试运行走完整决策路径但不落库也不写审计日志
func (h *MatchingHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AutoAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的项目ID格式"))
		return
	}

	requirementIDs := make([]uuid.UUID, 0, len(req.RequirementIDs))
	for _, raw := range req.RequirementIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的需求ID格式: "+raw))
			return
		}
		requirementIDs = append(requirementIDs, id)
	}

	engine := h.buildEngine(req.Weights, req.RequiredCertifications, req.MinRating)
	asg := assigner.New(h.store, engine)

	maxPerConsultant := req.MaxPerConsultant
	if maxPerConsultant <= 0 && h.cfg != nil {
		maxPerConsultant = h.cfg.MaxPerConsultant
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	start := time.Now()
	result, err := asg.AutoAssign(ctx, projectID, assigner.Options{
		DryRun:           req.DryRun,
		MaxPerConsultant: maxPerConsultant,
		RequirementIDs:   requirementIDs,
	})
	if err != nil {
		metrics.RecordMatchingRun(string(model.RunModeAutoAssign), false, time.Since(start))
		if !req.DryRun {
			// 失败运行也留审计痕迹（尽力而为）
			engine.CreateAssignmentLog(ctx, projectID, nil, req.UserID, model.RunModeAutoAssign, 0, 0, 0, 0, "failed")
		}
		if err == context.DeadlineExceeded {
			respondError(w, errors.New(errors.CodeTimeout, "自动指派计算超时"))
			return
		}
		respondAnyError(w, err)
		return
	}
	metrics.RecordMatchingRun(string(model.RunModeAutoAssign), true, time.Since(start))
	metrics.RecordAssignments(projectID.String(), req.DryRun, result.AssignmentsMade, result.ConflictsFound)

	if !req.DryRun {
		if err := engine.CreateAssignmentLog(ctx, projectID, nil, req.UserID, model.RunModeAutoAssign,
			result.TotalEvaluated, result.TotalEligible, result.AssignmentsMade, result.ConflictsFound, "completed"); err != nil {
			respondAnyError(w, err)
			return
		}
	}

	fill := h.fillMetrics(ctx, projectID, result)
	if fill != nil {
		metrics.SetFillRate(projectID.String(), fill.FillRate)
	}

	respondJSON(w, http.StatusOK, AutoAssignResponse{
		ProjectID:       result.ProjectID.String(),
		DryRun:          result.DryRun,
		AssignmentsMade: result.AssignmentsMade,
		ConflictsFound:  result.ConflictsFound,
		TotalEvaluated:  result.TotalEvaluated,
		TotalEligible:   result.TotalEligible,
		Assignments:     result.Assignments,
		Skipped:         result.Skipped,
		Fill:            fill,
		Duration:        result.Duration.String(),
	})
}

// fillMetrics 运行后重新拉取需求并计算填充情况
// 真实运行的写入已反映在重查结果中，只有试运行需要叠加内存中的指派
func (h *MatchingHandler) fillMetrics(ctx context.Context, projectID uuid.UUID, result *assigner.Result) *stats.FillMetrics {
	requirements, err := h.store.GetProjectRequirementsWithContext(ctx, projectID)
	if err != nil {
		return nil
	}
	if result.DryRun {
		return stats.AnalyzeFill(requirements, result)
	}
	return stats.AnalyzeFill(requirements, nil)
}

// buildEngine 按请求覆盖项构建评分引擎
func (h *MatchingHandler) buildEngine(weights *matcher.Weights, certs []string, minRating *float64) *matcher.Engine {
	engine := matcher.NewEngine(h.store)
	if weights != nil {
		engine.WithWeights(*weights)
	}
	if len(certs) > 0 || minRating != nil {
		engine.WithOptions(constraint.Options{
			RequiredCertifications: certs,
			MinRating:              minRating,
		})
	}
	return engine
}

// findRequirement 在项目需求中定位目标需求
func (h *MatchingHandler) findRequirement(ctx context.Context, projectID, requirementID uuid.UUID) (*model.Requirement, *errors.AppError) {
	requirements, err := h.store.GetProjectRequirementsWithContext(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "获取项目需求失败")
	}
	for _, req := range requirements {
		if req.ID == requirementID {
			return req, nil
		}
	}
	return nil, errors.NotFound("需求", requirementID.String())
}

// timeout 运行超时时间
func (h *MatchingHandler) timeout() time.Duration {
	if h.cfg != nil && h.cfg.DefaultTimeout > 0 {
		return h.cfg.DefaultTimeout
	}
	return 30 * time.Second
}
