// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// ConsultantRepository 顾问仓储
type ConsultantRepository struct {
	db DB
}

// NewConsultantRepository 创建顾问仓储
func NewConsultantRepository(db DB) *ConsultantRepository {
	return &ConsultantRepository{db: db}
}

const consultantColumns = `id, name, is_available, is_onboarded, state,
	emr_systems, emr_experience, modules, units, skills,
	shift_preference, preferred_colleagues, created_at, updated_at`

// Create 创建顾问
func (r *ConsultantRepository) Create(ctx context.Context, c *model.Consultant) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	systemsJSON, _ := json.Marshal(c.EMRSystems)
	expJSON, _ := json.Marshal(c.EMRExperience)
	modulesJSON, _ := json.Marshal(c.Modules)
	unitsJSON, _ := json.Marshal(c.Units)
	skillsJSON, _ := json.Marshal(c.Skills)
	colleaguesJSON, _ := json.Marshal(c.PreferredColleagues)

	query := `
		INSERT INTO consultants (
			id, name, is_available, is_onboarded, state,
			emr_systems, emr_experience, modules, units, skills,
			shift_preference, preferred_colleagues, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.IsAvailable, c.IsOnboarded, c.State,
		systemsJSON, expJSON, modulesJSON, unitsJSON, skillsJSON,
		c.ShiftPreference, colleaguesJSON, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建顾问失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取顾问
func (r *ConsultantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Consultant, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM consultants
		WHERE id = $1 AND deleted_at IS NULL
	`, consultantColumns)

	c, err := r.scanConsultant(r.db.QueryRowContext(ctx, query, id))
	if err != nil || c == nil {
		return c, err
	}

	consultants := []*model.Consultant{c}
	if err := r.attachRatings(ctx, consultants); err != nil {
		return nil, err
	}
	if err := r.attachAvailability(ctx, consultants); err != nil {
		return nil, err
	}
	return c, nil
}

// ListWithFullDetails 获取全部在册顾问（含经验/技能/评价/可用性的完整投影）
func (r *ConsultantRepository) ListWithFullDetails(ctx context.Context) ([]*model.Consultant, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM consultants
		WHERE deleted_at IS NULL
		ORDER BY created_at
	`, consultantColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询顾问列表失败: %w", err)
	}
	defer rows.Close()

	var consultants []*model.Consultant
	for rows.Next() {
		c, err := r.scanConsultant(rows)
		if err != nil {
			return nil, err
		}
		consultants = append(consultants, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历顾问列表失败: %w", err)
	}

	if err := r.attachRatings(ctx, consultants); err != nil {
		return nil, err
	}
	if err := r.attachAvailability(ctx, consultants); err != nil {
		return nil, err
	}

	return consultants, nil
}

// attachRatings 批量加载并挂载历史评价
func (r *ConsultantRepository) attachRatings(ctx context.Context, consultants []*model.Consultant) error {
	if len(consultants) == 0 {
		return nil
	}

	query := `
		SELECT consultant_id, overall_rating
		FROM consultant_ratings
		ORDER BY consultant_id, created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("查询顾问评价失败: %w", err)
	}
	defer rows.Close()

	byConsultant := make(map[uuid.UUID][]model.Rating)
	for rows.Next() {
		var id uuid.UUID
		var rating model.Rating
		if err := rows.Scan(&id, &rating.OverallRating); err != nil {
			return fmt.Errorf("扫描顾问评价失败: %w", err)
		}
		byConsultant[id] = append(byConsultant[id], rating)
	}

	for _, c := range consultants {
		c.Ratings = byConsultant[c.ID]
	}
	return nil
}

// attachAvailability 批量加载并挂载可用性区块
func (r *ConsultantRepository) attachAvailability(ctx context.Context, consultants []*model.Consultant) error {
	if len(consultants) == 0 {
		return nil
	}

	query := `
		SELECT consultant_id, start_date, end_date, type, COALESCE(note, '')
		FROM consultant_availability
		ORDER BY consultant_id, start_date
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("查询顾问可用性失败: %w", err)
	}
	defer rows.Close()

	byConsultant := make(map[uuid.UUID][]model.AvailabilityBlock)
	for rows.Next() {
		var id uuid.UUID
		var block model.AvailabilityBlock
		if err := rows.Scan(&id, &block.StartDate, &block.EndDate, &block.Type, &block.Note); err != nil {
			return fmt.Errorf("扫描顾问可用性失败: %w", err)
		}
		byConsultant[id] = append(byConsultant[id], block)
	}

	for _, c := range consultants {
		c.Availability = byConsultant[c.ID]
	}
	return nil
}

// scanConsultant 扫描一行顾问数据（单行查询无结果时返回 nil, nil）
func (r *ConsultantRepository) scanConsultant(s Scanner) (*model.Consultant, error) {
	c := &model.Consultant{}
	var systemsJSON, expJSON, modulesJSON, unitsJSON, skillsJSON, colleaguesJSON []byte

	err := s.Scan(
		&c.ID, &c.Name, &c.IsAvailable, &c.IsOnboarded, &c.State,
		&systemsJSON, &expJSON, &modulesJSON, &unitsJSON, &skillsJSON,
		&c.ShiftPreference, &colleaguesJSON, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描顾问数据失败: %w", err)
	}

	json.Unmarshal(systemsJSON, &c.EMRSystems)
	json.Unmarshal(expJSON, &c.EMRExperience)
	json.Unmarshal(modulesJSON, &c.Modules)
	json.Unmarshal(unitsJSON, &c.Units)
	json.Unmarshal(skillsJSON, &c.Skills)
	json.Unmarshal(colleaguesJSON, &c.PreferredColleagues)

	return c, nil
}
