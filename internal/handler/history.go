// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
)

// HistoryStore 推荐缓存与运行日志的只读存储边界
type HistoryStore interface {
	ListValidRecommendations(ctx context.Context, requirementID uuid.UUID) ([]model.SchedulingRecommendation, error)
	ListRunLogs(ctx context.Context, projectID uuid.UUID, limit int) ([]model.AutoAssignLog, error)
}

// HistoryHandler 推荐缓存与运行历史查询处理器
type HistoryHandler struct {
	store HistoryStore
}

// NewHistoryHandler 创建历史查询处理器
func NewHistoryHandler(store HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// CachedRecommendations 查询需求的未过期推荐缓存
func (h *HistoryHandler) CachedRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	requirementID, err := uuid.Parse(r.URL.Query().Get("requirement_id"))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的需求ID格式"))
		return
	}

	records, err := h.store.ListValidRecommendations(r.Context(), requirementID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询推荐缓存失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requirement_id":  requirementID.String(),
		"recommendations": records,
		"count":           len(records),
	})
}

// RunLogs 查询项目的调度运行日志
func (h *HistoryHandler) RunLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的项目ID格式"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.store.ListRunLogs(r.Context(), projectID, limit)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询运行日志失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"project_id": projectID.String(),
		"runs":       logs,
		"count":      len(logs),
	})
}
