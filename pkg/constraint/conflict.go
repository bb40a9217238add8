// Package constraint 提供顾问硬约束检查与软信号探针
package constraint

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// ScheduleConflict 排班冲突信息
type ScheduleConflict struct {
	ConsultantID uuid.UUID       `json:"consultant_id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	Date         string          `json:"date"`
	ShiftType    model.ShiftType `json:"shift_type"`
	Message      string          `json:"message"`
}

// ConflictChecker 排班冲突查询接口
// excludeProjectID 为当前派工项目：同项目多班次覆盖不算冲突
type ConflictChecker interface {
	FindConflicts(ctx context.Context, consultantID uuid.UUID, dates []string, excludeProjectID uuid.UUID) ([]ScheduleConflict, error)
}

// AssignmentSource 顾问指派记录查询接口（含父排班联查投影）
type AssignmentSource interface {
	GetConsultantAssignments(ctx context.Context, consultantID uuid.UUID) ([]model.AssignmentWithSchedule, error)
}

// StoreConflictChecker 基于存储层的冲突检查器
type StoreConflictChecker struct {
	source AssignmentSource
}

// NewStoreConflictChecker 创建基于存储层的冲突检查器
func NewStoreConflictChecker(source AssignmentSource) *StoreConflictChecker {
	return &StoreConflictChecker{source: source}
}

// FindConflicts 查询顾问在目标日期上的既有排班冲突
func (c *StoreConflictChecker) FindConflicts(ctx context.Context, consultantID uuid.UUID, dates []string, excludeProjectID uuid.UUID) ([]ScheduleConflict, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	assignments, err := c.source.GetConsultantAssignments(ctx, consultantID)
	if err != nil {
		return nil, fmt.Errorf("查询顾问指派记录失败: %w", err)
	}

	return FilterConflicts(assignments, consultantID, dates, excludeProjectID), nil
}

// FilterConflicts 从指派记录中筛选冲突（纯函数，便于独立测试）
// 冲突定义：父排班落在目标日期、状态已生效、且属于其他项目
func FilterConflicts(assignments []model.AssignmentWithSchedule, consultantID uuid.UUID, dates []string, excludeProjectID uuid.UUID) []ScheduleConflict {
	dateSet := make(map[string]bool, len(dates))
	for _, d := range dates {
		dateSet[d] = true
	}

	var conflicts []ScheduleConflict
	for _, a := range assignments {
		if !dateSet[a.ScheduleDate] {
			continue
		}
		if !a.ScheduleStatus.IsCommitted() {
			continue
		}
		if a.ScheduleProjectID == excludeProjectID {
			continue
		}
		conflicts = append(conflicts, ScheduleConflict{
			ConsultantID: consultantID,
			ProjectID:    a.ScheduleProjectID,
			Date:         a.ScheduleDate,
			ShiftType:    a.ScheduleShift,
			Message:      fmt.Sprintf("顾问在 %s 已有项目 %s 的排班", a.ScheduleDate, a.ScheduleProjectID),
		})
	}

	return conflicts
}
