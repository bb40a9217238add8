// Package repository 提供数据访问层
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// Store 聚合各仓储，实现匹配引擎的存储边界
type Store struct {
	Consultants     *ConsultantRepository
	Requirements    *RequirementRepository
	Schedules       *ScheduleRepository
	Recommendations *RecommendationRepository
}

// NewStore 创建聚合存储
func NewStore(db DB) *Store {
	return &Store{
		Consultants:     NewConsultantRepository(db),
		Requirements:    NewRequirementRepository(db),
		Schedules:       NewScheduleRepository(db),
		Recommendations: NewRecommendationRepository(db),
	}
}

// GetConsultantsWithFullDetails 获取全部在册顾问的完整投影
func (s *Store) GetConsultantsWithFullDetails(ctx context.Context) ([]*model.Consultant, error) {
	return s.Consultants.ListWithFullDetails(ctx)
}

// GetProjectRequirementsWithContext 获取项目的全部需求
func (s *Store) GetProjectRequirementsWithContext(ctx context.Context, projectID uuid.UUID) ([]*model.Requirement, error) {
	return s.Requirements.ListByProjectWithContext(ctx, projectID)
}

// GetConsultantSchedules 获取顾问关联的排班容器
func (s *Store) GetConsultantSchedules(ctx context.Context, consultantID uuid.UUID) ([]*model.Schedule, error) {
	return s.Schedules.ListByConsultant(ctx, consultantID)
}

// GetConsultantAssignments 获取顾问的指派记录（含父排班）
func (s *Store) GetConsultantAssignments(ctx context.Context, consultantID uuid.UUID) ([]model.AssignmentWithSchedule, error) {
	return s.Schedules.ListAssignmentsByConsultant(ctx, consultantID)
}

// GetProjectSchedules 获取项目的全部排班容器
func (s *Store) GetProjectSchedules(ctx context.Context, projectID uuid.UUID) ([]*model.Schedule, error) {
	return s.Schedules.ListByProject(ctx, projectID)
}

// CreateProjectSchedule 创建排班容器
func (s *Store) CreateProjectSchedule(ctx context.Context, schedule *model.Schedule) error {
	return s.Schedules.Create(ctx, schedule)
}

// CreateScheduleAssignment 创建排班指派
func (s *Store) CreateScheduleAssignment(ctx context.Context, assignment *model.Assignment) error {
	return s.Schedules.CreateAssignment(ctx, assignment)
}

// SaveSchedulingRecommendations 保存推荐结果缓存
func (s *Store) SaveSchedulingRecommendations(ctx context.Context, records []model.SchedulingRecommendation) error {
	return s.Recommendations.SaveBatch(ctx, records)
}

// CreateAutoAssignmentLog 写入调度运行审计日志
func (s *Store) CreateAutoAssignmentLog(ctx context.Context, entry *model.AutoAssignLog) error {
	return s.Recommendations.CreateLog(ctx, entry)
}

// ListValidRecommendations 获取需求的未过期推荐缓存
func (s *Store) ListValidRecommendations(ctx context.Context, requirementID uuid.UUID) ([]model.SchedulingRecommendation, error) {
	return s.Recommendations.ListValid(ctx, requirementID)
}

// ListRunLogs 获取项目的调度运行日志
func (s *Store) ListRunLogs(ctx context.Context, projectID uuid.UUID, limit int) ([]model.AutoAssignLog, error) {
	return s.Recommendations.ListLogsByProject(ctx, projectID, limit)
}

// PurgeExpiredRecommendations 清理过期的推荐缓存
func (s *Store) PurgeExpiredRecommendations(ctx context.Context) (int64, error) {
	return s.Recommendations.PurgeExpired(ctx)
}
