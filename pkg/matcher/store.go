// Package matcher 提供顾问评分与推荐引擎
package matcher

import (
	"context"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// Store 存储协作方接口
// 引擎自身无状态，所有挂起点都在该边界上
type Store interface {
	// GetConsultantsWithFullDetails 获取全部在册顾问（含经验/技能/评价/可用性的完整投影）
	GetConsultantsWithFullDetails(ctx context.Context) ([]*model.Consultant, error)

	// GetProjectRequirementsWithContext 获取项目的全部需求（含设施上下文）
	GetProjectRequirementsWithContext(ctx context.Context, projectID uuid.UUID) ([]*model.Requirement, error)

	// GetConsultantSchedules 获取顾问关联的排班容器
	GetConsultantSchedules(ctx context.Context, consultantID uuid.UUID) ([]*model.Schedule, error)

	// GetConsultantAssignments 获取顾问的指派记录（含父排班日期/项目，冲突判定用）
	GetConsultantAssignments(ctx context.Context, consultantID uuid.UUID) ([]model.AssignmentWithSchedule, error)

	// GetProjectSchedules 获取项目的全部排班容器
	GetProjectSchedules(ctx context.Context, projectID uuid.UUID) ([]*model.Schedule, error)

	// CreateProjectSchedule 创建排班容器
	CreateProjectSchedule(ctx context.Context, schedule *model.Schedule) error

	// CreateScheduleAssignment 创建排班指派
	CreateScheduleAssignment(ctx context.Context, assignment *model.Assignment) error

	// SaveSchedulingRecommendations 保存推荐结果缓存（带 TTL）
	SaveSchedulingRecommendations(ctx context.Context, records []model.SchedulingRecommendation) error

	// CreateAutoAssignmentLog 写入调度运行审计日志（追加写）
	CreateAutoAssignmentLog(ctx context.Context, entry *model.AutoAssignLog) error
}
