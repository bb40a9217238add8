// Package assigner 提供项目级自动指派的分配循环
package assigner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/constraint"
	"github.com/paigong/paigong/pkg/logger"
	"github.com/paigong/paigong/pkg/matcher"
	"github.com/paigong/paigong/pkg/model"
)

// DefaultMaxPerConsultant 单次运行内单个顾问的默认指派上限
const DefaultMaxPerConsultant = 5

// 候选名单超量拉取倍数（吸收被跳过的候选人）
const overfetchFactor = 2

// Options 自动指派选项
type Options struct {
	// DryRun 试运行：执行完整决策逻辑但不产生任何写入
	DryRun bool `json:"dry_run"`

	// MaxPerConsultant 单次运行内单个顾问的指派上限（运行作用域计数，非全局终身上限）
	MaxPerConsultant int `json:"max_per_consultant"`

	// RequirementIDs 只处理指定需求（为空则处理项目全部需求）
	RequirementIDs []uuid.UUID `json:"requirement_ids,omitempty"`
}

// Skipped 被跳过的候选人及原因
type Skipped struct {
	ConsultantID  uuid.UUID `json:"consultant_id"`
	RequirementID uuid.UUID `json:"requirement_id"`
	Reason        string    `json:"reason"`
}

// MadeAssignment 本次运行产生的指派
type MadeAssignment struct {
	AssignmentID  uuid.UUID `json:"assignment_id"`
	ScheduleID    uuid.UUID `json:"schedule_id"`
	ConsultantID  uuid.UUID `json:"consultant_id"`
	RequirementID uuid.UUID `json:"requirement_id"`
	Score         float64   `json:"score"`
	Rank          int       `json:"rank"`
	DryRun        bool      `json:"dry_run,omitempty"`
}

// Result 自动指派运行结果
// 单个指派的失败不会中止运行，调用方须以返回计数为准
type Result struct {
	ProjectID       uuid.UUID        `json:"project_id"`
	AssignmentsMade int              `json:"assignments_made"`
	ConflictsFound  int              `json:"conflicts_found"`
	Assignments     []MadeAssignment `json:"assignments"`
	Skipped         []Skipped        `json:"skipped"`
	TotalEvaluated  int              `json:"total_evaluated"`
	TotalEligible   int              `json:"total_eligible"`
	Duration        time.Duration    `json:"duration"`
	DryRun          bool             `json:"dry_run"`
}

// Assigner 自动指派器
type Assigner struct {
	store     matcher.Store
	engine    *matcher.Engine
	conflicts constraint.ConflictChecker
	log       *logger.MatchLogger
}

// New 创建自动指派器
func New(store matcher.Store, engine *matcher.Engine) *Assigner {
	return &Assigner{
		store:     store,
		engine:    engine,
		conflicts: constraint.NewStoreConflictChecker(store),
		log:       logger.NewMatchLogger(),
	}
}

// runState 单次运行的内存状态（绝不放在包级变量上）
type runState struct {
	// perConsultant 本次运行内每个顾问已获得的指派数
	perConsultant map[uuid.UUID]int

	// schedules 项目排班容器缓存，key 为 date|shift
	schedules map[string]*model.Schedule
}

// plannedAssignment 计划阶段选出的待指派（纯决策结果，尚无副作用）
type plannedAssignment struct {
	consultant model.Consultant
	score      float64
	rank       int
	date       string
	shift      model.ShiftType
}

// AutoAssign 执行项目级自动指派
// 决策与落库分离：计划阶段为纯选择，应用阶段是唯一触碰存储的地方，
// 试运行下应用阶段整体退化为占位符，保证与真实运行决策一致
func (a *Assigner) AutoAssign(ctx context.Context, projectID uuid.UUID, opts Options) (*Result, error) {
	start := time.Now()

	if opts.MaxPerConsultant <= 0 {
		opts.MaxPerConsultant = DefaultMaxPerConsultant
	}
	if err := a.engine.Weights().Validate(); err != nil {
		return nil, err
	}

	requirements, err := a.loadRequirements(ctx, projectID, opts.RequirementIDs)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ProjectID:   projectID,
		Assignments: make([]MadeAssignment, 0),
		Skipped:     make([]Skipped, 0),
		DryRun:      opts.DryRun,
	}

	state := &runState{
		perConsultant: make(map[uuid.UUID]int),
		schedules:     make(map[string]*model.Schedule),
	}
	if err := a.loadSchedules(ctx, projectID, state); err != nil {
		return nil, err
	}

	a.log.StartRun(string(model.RunModeAutoAssign), projectID.String(), len(requirements))

	for _, req := range requirements {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		stillNeeded := req.StillNeeded()
		if stillNeeded <= 0 {
			continue
		}

		rec, err := a.engine.GetRecommendations(ctx, req)
		if err != nil {
			return nil, err
		}
		result.TotalEvaluated += rec.TotalEvaluated
		result.TotalEligible += rec.TotalEligible

		planned := a.plan(ctx, req, rec, stillNeeded, opts, state, result)
		a.apply(ctx, projectID, req, planned, opts.DryRun, state, result)
	}

	result.Duration = time.Since(start)
	a.log.RunComplete(string(model.RunModeAutoAssign), result.Duration, result.AssignmentsMade, result.ConflictsFound)

	return result, nil
}

// loadRequirements 加载项目需求（可选子集过滤）
func (a *Assigner) loadRequirements(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) ([]*model.Requirement, error) {
	requirements, err := a.store.GetProjectRequirementsWithContext(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("获取项目需求失败: %w", err)
	}

	if len(ids) == 0 {
		return requirements, nil
	}

	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	filtered := make([]*model.Requirement, 0, len(ids))
	for _, req := range requirements {
		if wanted[req.ID] {
			filtered = append(filtered, req)
		}
	}
	return filtered, nil
}

// loadSchedules 预载项目排班容器缓存
func (a *Assigner) loadSchedules(ctx context.Context, projectID uuid.UUID, state *runState) error {
	schedules, err := a.store.GetProjectSchedules(ctx, projectID)
	if err != nil {
		return fmt.Errorf("获取项目排班失败: %w", err)
	}
	for _, s := range schedules {
		state.schedules[scheduleKey(s.Date, s.ShiftType)] = s
	}
	return nil
}

// plan 计划阶段：按排名走候选名单，纯选择、无副作用
func (a *Assigner) plan(ctx context.Context, req *model.Requirement, rec *matcher.RecommendationResult, stillNeeded int, opts Options, state *runState, result *Result) []plannedAssignment {
	candidates := rec.EligibleInRankOrder(stillNeeded * overfetchFactor)

	date, shift := resolveDateShift(req)
	planned := make([]plannedAssignment, 0, stillNeeded)

	for _, cand := range candidates {
		if len(planned) >= stillNeeded {
			break
		}

		// 单次运行指派上限（运行作用域计数）
		if state.perConsultant[cand.ConsultantID] >= opts.MaxPerConsultant {
			a.skip(result, cand.ConsultantID, req.ID,
				fmt.Sprintf("已达单次运行指派上限 %d", opts.MaxPerConsultant))
			continue
		}

		// 已指派到本需求（计为冲突）
		if req.IsAssigned(cand.ConsultantID) {
			result.ConflictsFound++
			a.skip(result, cand.ConsultantID, req.ID, "已指派到本需求")
			continue
		}

		// 项目外排班冲突（同项目多班次覆盖是允许的）
		conflicts, err := a.conflicts.FindConflicts(ctx, cand.ConsultantID, req.DateStrings(), req.ProjectID)
		if err != nil {
			a.skip(result, cand.ConsultantID, req.ID, fmt.Sprintf("冲突查询失败: %v", err))
			continue
		}
		if len(conflicts) > 0 {
			result.ConflictsFound++
			a.skip(result, cand.ConsultantID, req.ID, conflicts[0].Message)
			continue
		}

		state.perConsultant[cand.ConsultantID]++
		planned = append(planned, plannedAssignment{
			consultant: model.Consultant{BaseModel: model.BaseModel{ID: cand.ConsultantID}, Name: cand.ConsultantName},
			score:      cand.TotalScore,
			rank:       cand.Rank,
			date:       date,
			shift:      shift,
		})
	}

	return planned
}

// apply 应用阶段：解析排班容器并落库；试运行下不触碰存储
func (a *Assigner) apply(ctx context.Context, projectID uuid.UUID, req *model.Requirement, planned []plannedAssignment, dryRun bool, state *runState, result *Result) {
	for _, p := range planned {
		schedule, err := a.resolveSchedule(ctx, projectID, p.date, p.shift, dryRun, state)
		if err != nil {
			a.skip(result, p.consultant.ID, req.ID, fmt.Sprintf("创建排班容器失败: %v", err))
			continue
		}

		assignment := &model.Assignment{
			BaseModel:     model.NewBaseModel(),
			ScheduleID:    schedule.ID,
			ConsultantID:  p.consultant.ID,
			RequirementID: &req.ID,
			UnitID:        req.UnitID,
			ModuleID:      req.ModuleID,
			Notes:         fmt.Sprintf("自动指派，综合评分 %.2f，排名 %d", p.score, p.rank),
		}

		if !dryRun {
			if err := a.store.CreateScheduleAssignment(ctx, assignment); err != nil {
				// 单个指派失败不中止运行
				a.log.CandidateSkipped(p.consultant.ID.String(), err.Error())
				a.skip(result, p.consultant.ID, req.ID, fmt.Sprintf("指派写入失败: %v", err))
				continue
			}
		}

		result.AssignmentsMade++
		result.Assignments = append(result.Assignments, MadeAssignment{
			AssignmentID:  assignment.ID,
			ScheduleID:    schedule.ID,
			ConsultantID:  p.consultant.ID,
			RequirementID: req.ID,
			Score:         p.score,
			Rank:          p.rank,
			DryRun:        dryRun,
		})
	}
}

// resolveSchedule 解析 (日期, 班次) 的排班容器：优先复用，其次创建
// 试运行下返回合成占位容器并缓存，保持与真实运行一致的复用行为
func (a *Assigner) resolveSchedule(ctx context.Context, projectID uuid.UUID, date string, shift model.ShiftType, dryRun bool, state *runState) (*model.Schedule, error) {
	key := scheduleKey(date, shift)
	if s, ok := state.schedules[key]; ok {
		return s, nil
	}

	schedule := &model.Schedule{
		BaseModel: model.NewBaseModel(),
		ProjectID: projectID,
		Date:      date,
		ShiftType: shift,
		Status:    model.ScheduleStatusPlanned,
	}

	if !dryRun {
		if err := a.store.CreateProjectSchedule(ctx, schedule); err != nil {
			return nil, err
		}
	}

	state.schedules[key] = schedule
	return schedule, nil
}

// skip 记录一次跳过
func (a *Assigner) skip(result *Result, consultantID, requirementID uuid.UUID, reason string) {
	a.log.CandidateSkipped(consultantID.String(), reason)
	result.Skipped = append(result.Skipped, Skipped{
		ConsultantID:  consultantID,
		RequirementID: requirementID,
		Reason:        reason,
	})
}

// resolveDateShift 取需求的容器日期与班次；无日期时默认今天的白班
func resolveDateShift(req *model.Requirement) (string, model.ShiftType) {
	if len(req.Dates) > 0 {
		shift := req.Dates[0].ShiftType
		if shift == "" {
			shift = req.ShiftType
		}
		if shift == "" {
			shift = model.ShiftDay
		}
		return req.Dates[0].Date, shift
	}
	return time.Now().Format("2006-01-02"), model.ShiftDay
}

// scheduleKey 排班容器缓存键
func scheduleKey(date string, shift model.ShiftType) string {
	return date + "|" + string(shift)
}
