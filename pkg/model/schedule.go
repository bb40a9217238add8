// Package model 定义派工引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus 排班容器状态
type ScheduleStatus string

const (
	ScheduleStatusPlanned   ScheduleStatus = "planned"   // 已计划
	ScheduleStatusConfirmed ScheduleStatus = "confirmed" // 已确认
	ScheduleStatusCancelled ScheduleStatus = "cancelled" // 已取消
)

// IsCommitted 判断排班是否已生效（取消的排班不参与冲突判定）
func (s ScheduleStatus) IsCommitted() bool {
	return s == ScheduleStatusPlanned || s == ScheduleStatusConfirmed
}

// Schedule 排班容器（项目 + 日期 + 班次的分组，指派挂在其下）
type Schedule struct {
	BaseModel
	ProjectID uuid.UUID      `json:"project_id" db:"project_id"`
	Date      string         `json:"date" db:"date"` // YYYY-MM-DD
	ShiftType ShiftType      `json:"shift_type" db:"shift_type"`
	Status    ScheduleStatus `json:"status" db:"status"`
}

// Assignment 排班指派记录
type Assignment struct {
	BaseModel
	ScheduleID    uuid.UUID  `json:"schedule_id" db:"schedule_id"`
	ConsultantID  uuid.UUID  `json:"consultant_id" db:"consultant_id"`
	RequirementID *uuid.UUID `json:"requirement_id,omitempty" db:"requirement_id"`
	UnitID        *uuid.UUID `json:"unit_id,omitempty" db:"unit_id"`
	ModuleID      *uuid.UUID `json:"module_id,omitempty" db:"module_id"`
	Notes         string     `json:"notes,omitempty" db:"notes"` // 来源备注（如产生该指派的分数）
}

// AssignmentWithSchedule 指派记录连同父排班（冲突判定用的联查投影）
type AssignmentWithSchedule struct {
	Assignment
	ScheduleProjectID uuid.UUID      `json:"schedule_project_id" db:"schedule_project_id"`
	ScheduleDate      string         `json:"schedule_date" db:"schedule_date"`
	ScheduleShift     ShiftType      `json:"schedule_shift" db:"schedule_shift"`
	ScheduleStatus    ScheduleStatus `json:"schedule_status" db:"schedule_status"`
}

// RunMode 调度运行模式
type RunMode string

const (
	RunModeRecommendation RunMode = "recommendation" // 推荐
	RunModeAutoAssign     RunMode = "auto_assign"    // 自动指派
)

// AutoAssignLog 调度运行审计日志（追加写，每次运行一行）
type AutoAssignLog struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ProjectID       uuid.UUID  `json:"project_id" db:"project_id"`
	ScheduleID      *uuid.UUID `json:"schedule_id,omitempty" db:"schedule_id"`
	UserID          string     `json:"user_id,omitempty" db:"user_id"`
	Mode            RunMode    `json:"mode" db:"mode"`
	TotalEvaluated  int        `json:"total_evaluated" db:"total_evaluated"`
	TotalEligible   int        `json:"total_eligible" db:"total_eligible"`
	AssignmentsMade int        `json:"assignments_made" db:"assignments_made"`
	ConflictsFound  int        `json:"conflicts_found" db:"conflicts_found"`
	Weights         JSONMap    `json:"weights" db:"weights"`
	Status          string     `json:"status" db:"status"` // completed/failed
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// SchedulingRecommendation 推荐结果缓存行（带 TTL）
type SchedulingRecommendation struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	RequirementID uuid.UUID  `json:"requirement_id" db:"requirement_id"`
	ScheduleID    *uuid.UUID `json:"schedule_id,omitempty" db:"schedule_id"`
	ConsultantID  uuid.UUID  `json:"consultant_id" db:"consultant_id"`
	Rank          int        `json:"rank" db:"rank"`
	TotalScore    float64    `json:"total_score" db:"total_score"`
	IsEligible    bool       `json:"is_eligible" db:"is_eligible"`
	ExpiresAt     time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
