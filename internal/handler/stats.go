// Package handler 提供HTTP请求处理器
package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/stats"
)

// ProjectFill 查询项目人员填充情况
func (h *MatchingHandler) ProjectFill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的项目ID格式"))
		return
	}

	requirements, err := h.store.GetProjectRequirementsWithContext(r.Context(), projectID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "获取项目需求失败"))
		return
	}

	respondJSON(w, http.StatusOK, stats.AnalyzeFill(requirements, nil))
}
