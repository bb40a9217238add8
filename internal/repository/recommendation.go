// Package repository 提供数据访问层
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// RecommendationRepository 推荐缓存与审计日志仓储
type RecommendationRepository struct {
	db DB
}

// NewRecommendationRepository 创建推荐仓储
func NewRecommendationRepository(db DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// SaveBatch 批量保存推荐结果缓存（覆盖同需求的旧缓存）
func (r *RecommendationRepository) SaveBatch(ctx context.Context, records []model.SchedulingRecommendation) error {
	if len(records) == 0 {
		return nil
	}

	deleteQuery := `DELETE FROM scheduling_recommendations WHERE requirement_id = $1`
	if _, err := r.db.ExecContext(ctx, deleteQuery, records[0].RequirementID); err != nil {
		return fmt.Errorf("清理旧推荐缓存失败: %w", err)
	}

	var placeholders []string
	var args []interface{}
	argIndex := 1
	for _, rec := range records {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			argIndex, argIndex+1, argIndex+2, argIndex+3, argIndex+4, argIndex+5, argIndex+6, argIndex+7, argIndex+8))
		args = append(args,
			rec.ID, rec.RequirementID, rec.ScheduleID, rec.ConsultantID,
			rec.Rank, rec.TotalScore, rec.IsEligible, rec.ExpiresAt, rec.CreatedAt,
		)
		argIndex += 9
	}

	query := fmt.Sprintf(`
		INSERT INTO scheduling_recommendations (
			id, requirement_id, schedule_id, consultant_id,
			rank, total_score, is_eligible, expires_at, created_at
		) VALUES %s
	`, strings.Join(placeholders, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("保存推荐缓存失败: %w", err)
	}

	return nil
}

// ListValid 获取需求的未过期推荐缓存（按排名升序）
func (r *RecommendationRepository) ListValid(ctx context.Context, requirementID uuid.UUID) ([]model.SchedulingRecommendation, error) {
	query := `
		SELECT id, requirement_id, schedule_id, consultant_id,
			rank, total_score, is_eligible, expires_at, created_at
		FROM scheduling_recommendations
		WHERE requirement_id = $1 AND expires_at > $2
		ORDER BY is_eligible DESC, rank
	`

	rows, err := r.db.QueryContext(ctx, query, requirementID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("查询推荐缓存失败: %w", err)
	}
	defer rows.Close()

	var records []model.SchedulingRecommendation
	for rows.Next() {
		var rec model.SchedulingRecommendation
		err := rows.Scan(
			&rec.ID, &rec.RequirementID, &rec.ScheduleID, &rec.ConsultantID,
			&rec.Rank, &rec.TotalScore, &rec.IsEligible, &rec.ExpiresAt, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描推荐缓存失败: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历推荐缓存失败: %w", err)
	}

	return records, nil
}

// PurgeExpired 清理过期的推荐缓存
func (r *RecommendationRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM scheduling_recommendations WHERE expires_at <= $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("清理过期推荐缓存失败: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// CreateLog 写入调度运行审计日志（追加写）
func (r *RecommendationRepository) CreateLog(ctx context.Context, entry *model.AutoAssignLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	weightsJSON, _ := json.Marshal(entry.Weights)

	query := `
		INSERT INTO auto_assignment_logs (
			id, project_id, schedule_id, user_id, mode,
			total_evaluated, total_eligible, assignments_made, conflicts_found,
			weights, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.ProjectID, entry.ScheduleID, entry.UserID, entry.Mode,
		entry.TotalEvaluated, entry.TotalEligible, entry.AssignmentsMade, entry.ConflictsFound,
		weightsJSON, entry.Status, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("写入审计日志失败: %w", err)
	}

	return nil
}

// ListLogsByProject 获取项目的调度运行日志（按时间倒序）
func (r *RecommendationRepository) ListLogsByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]model.AutoAssignLog, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, project_id, schedule_id, user_id, mode,
			total_evaluated, total_eligible, assignments_made, conflicts_found,
			weights, status, created_at
		FROM auto_assignment_logs
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询审计日志失败: %w", err)
	}
	defer rows.Close()

	var logs []model.AutoAssignLog
	for rows.Next() {
		var entry model.AutoAssignLog
		var weightsJSON []byte
		err := rows.Scan(
			&entry.ID, &entry.ProjectID, &entry.ScheduleID, &entry.UserID, &entry.Mode,
			&entry.TotalEvaluated, &entry.TotalEligible, &entry.AssignmentsMade, &entry.ConflictsFound,
			&weightsJSON, &entry.Status, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描审计日志失败: %w", err)
		}
		json.Unmarshal(weightsJSON, &entry.Weights)
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历审计日志失败: %w", err)
	}

	return logs, nil
}
