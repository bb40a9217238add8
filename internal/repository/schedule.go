// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// ScheduleRepository 排班仓储
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建排班仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create 创建排班容器
func (r *ScheduleRepository) Create(ctx context.Context, s *model.Schedule) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = model.ScheduleStatusPlanned
	}

	query := `
		INSERT INTO project_schedules (id, project_id, date, shift_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ProjectID, s.Date, s.ShiftType, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建排班失败: %w", err)
	}

	return nil
}

// ListByProject 获取项目的全部排班容器
func (r *ScheduleRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Schedule, error) {
	query := `
		SELECT id, project_id, date, shift_type, status, created_at, updated_at
		FROM project_schedules
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY date, shift_type
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("查询项目排班失败: %w", err)
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		s := &model.Schedule{}
		err := rows.Scan(&s.ID, &s.ProjectID, &s.Date, &s.ShiftType, &s.Status, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("扫描排班数据失败: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历排班列表失败: %w", err)
	}

	return schedules, nil
}

// ListByConsultant 获取顾问关联的排班容器
func (r *ScheduleRepository) ListByConsultant(ctx context.Context, consultantID uuid.UUID) ([]*model.Schedule, error) {
	query := `
		SELECT DISTINCT s.id, s.project_id, s.date, s.shift_type, s.status, s.created_at, s.updated_at
		FROM project_schedules s
		JOIN schedule_assignments a ON a.schedule_id = s.id
		WHERE a.consultant_id = $1 AND s.deleted_at IS NULL AND a.deleted_at IS NULL
		ORDER BY s.date, s.shift_type
	`

	rows, err := r.db.QueryContext(ctx, query, consultantID)
	if err != nil {
		return nil, fmt.Errorf("查询顾问排班失败: %w", err)
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		s := &model.Schedule{}
		err := rows.Scan(&s.ID, &s.ProjectID, &s.Date, &s.ShiftType, &s.Status, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("扫描排班数据失败: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历排班列表失败: %w", err)
	}

	return schedules, nil
}

// CreateAssignment 创建排班指派
func (r *ScheduleRepository) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO schedule_assignments (
			id, schedule_id, consultant_id, requirement_id, unit_id, module_id,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.ScheduleID, a.ConsultantID, a.RequirementID, a.UnitID, a.ModuleID,
		a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建指派失败: %w", err)
	}

	return nil
}

// ListAssignmentsByConsultant 获取顾问的指派记录（联查父排班，冲突判定用）
func (r *ScheduleRepository) ListAssignmentsByConsultant(ctx context.Context, consultantID uuid.UUID) ([]model.AssignmentWithSchedule, error) {
	query := `
		SELECT a.id, a.schedule_id, a.consultant_id, a.requirement_id, a.unit_id, a.module_id,
			COALESCE(a.notes, ''), a.created_at, a.updated_at,
			s.project_id, s.date, s.shift_type, s.status
		FROM schedule_assignments a
		JOIN project_schedules s ON s.id = a.schedule_id
		WHERE a.consultant_id = $1 AND a.deleted_at IS NULL AND s.deleted_at IS NULL
		ORDER BY s.date
	`

	rows, err := r.db.QueryContext(ctx, query, consultantID)
	if err != nil {
		return nil, fmt.Errorf("查询顾问指派失败: %w", err)
	}
	defer rows.Close()

	var assignments []model.AssignmentWithSchedule
	for rows.Next() {
		var a model.AssignmentWithSchedule
		err := rows.Scan(
			&a.ID, &a.ScheduleID, &a.ConsultantID, &a.RequirementID, &a.UnitID, &a.ModuleID,
			&a.Notes, &a.CreatedAt, &a.UpdatedAt,
			&a.ScheduleProjectID, &a.ScheduleDate, &a.ScheduleShift, &a.ScheduleStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描指派数据失败: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历指派列表失败: %w", err)
	}

	return assignments, nil
}
