// Package repository 提供数据访问层
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// RequirementRepository 人员需求仓储
type RequirementRepository struct {
	db DB
}

// NewRequirementRepository 创建需求仓储
func NewRequirementRepository(db DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// ListByProjectWithContext 获取项目的全部需求（联查医院设施上下文与已指派顾问）
func (r *RequirementRepository) ListByProjectWithContext(ctx context.Context, projectID uuid.UUID) ([]*model.Requirement, error) {
	query := `
		SELECT req.id, req.project_id, req.unit_id, req.module_id,
			COALESCE(h.emr_system, ''), COALESCE(h.state, ''),
			COALESCE(m.name, ''), COALESCE(req.shift_type, ''),
			req.dates, req.consultants_needed
		FROM staffing_requirements req
		JOIN projects p ON p.id = req.project_id
		JOIN hospitals h ON h.id = p.hospital_id
		LEFT JOIN emr_modules m ON m.id = req.module_id
		WHERE req.project_id = $1 AND req.deleted_at IS NULL
		ORDER BY req.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("查询项目需求失败: %w", err)
	}
	defer rows.Close()

	var requirements []*model.Requirement
	for rows.Next() {
		req := &model.Requirement{}
		var datesJSON []byte

		err := rows.Scan(
			&req.ID, &req.ProjectID, &req.UnitID, &req.ModuleID,
			&req.HospitalEMR, &req.HospitalState,
			&req.ModuleName, &req.ShiftType,
			&datesJSON, &req.ConsultantsNeeded,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描需求数据失败: %w", err)
		}

		json.Unmarshal(datesJSON, &req.Dates)
		requirements = append(requirements, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历需求列表失败: %w", err)
	}

	if err := r.attachAssigned(ctx, projectID, requirements); err != nil {
		return nil, err
	}

	return requirements, nil
}

// attachAssigned 批量加载每个需求下已指派的顾问
func (r *RequirementRepository) attachAssigned(ctx context.Context, projectID uuid.UUID, requirements []*model.Requirement) error {
	if len(requirements) == 0 {
		return nil
	}

	query := `
		SELECT a.requirement_id, a.consultant_id
		FROM schedule_assignments a
		JOIN project_schedules s ON s.id = a.schedule_id
		WHERE s.project_id = $1
			AND s.status != 'cancelled'
			AND a.requirement_id IS NOT NULL
			AND a.deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return fmt.Errorf("查询需求指派失败: %w", err)
	}
	defer rows.Close()

	byRequirement := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var reqID, consultantID uuid.UUID
		if err := rows.Scan(&reqID, &consultantID); err != nil {
			return fmt.Errorf("扫描需求指派失败: %w", err)
		}
		byRequirement[reqID] = append(byRequirement[reqID], consultantID)
	}

	for _, req := range requirements {
		req.AlreadyAssignedConsultantIDs = byRequirement[req.ID]
	}
	return nil
}
