package handler

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/storage"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/tracker"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// ApplicationHandler 负责申请跟踪相关请求
type ApplicationHandler struct {
	tracker *tracker.Service
}

// NewApplicationHandler 创建一个新的 ApplicationHandler 实例
func NewApplicationHandler(svc *tracker.Service) *ApplicationHandler {
	return &ApplicationHandler{tracker: svc}
}

// TrackRequest 登记申请请求体
type TrackRequest struct {
	Posting    types.CanonicalPosting `json:"posting"`
	MatchScore *float64               `json:"match_score,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
}

// HandleTrack 登记一次职位申请。
// POST /api/v1/applications
func (h *ApplicationHandler) HandleTrack(ctx context.Context, c *app.RequestContext) {
	var req TrackRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
		return
	}
	if req.Posting.ID == "" || req.Posting.Title == "" || req.Posting.Company == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "posting.id、posting.title 和 posting.company 不能为空"})
		return
	}

	record, created, err := h.tracker.Track(ctx, req.Posting, req.MatchScore, req.Notes)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	status := consts.StatusCreated
	if !created {
		// 重复登记返回已有记录
		status = consts.StatusOK
	}
	c.JSON(status, utils.H{
		"data":    record,
		"created": created,
	})
}

// StatusUpdateRequest 状态变更请求体
type StatusUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// HandleUpdateStatus 更新申请状态。
// PUT /api/v1/applications/:posting_id/status
func (h *ApplicationHandler) HandleUpdateStatus(ctx context.Context, c *app.RequestContext) {
	postingID := c.Param("posting_id")
	if postingID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "posting_id 不能为空"})
		return
	}

	var req StatusUpdateRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
		return
	}

	record, err := h.tracker.UpdateStatus(ctx, postingID, req.Status, req.Notes)
	if err != nil {
		if storage.IsRecordNotFound(err) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "申请记录不存在"})
			return
		}
		c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		return
	}

	c.JSON(consts.StatusOK, utils.H{"data": record})
}

// HandleList 列出申请记录。
// GET /api/v1/applications?status=&limit=&offset=
func (h *ApplicationHandler) HandleList(ctx context.Context, c *app.RequestContext) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := h.tracker.List(ctx, status, limit, offset)
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"data":        records,
		"total_count": total,
		"next_offset": offset + len(records),
	})
}

// HandleCheck 检查某职位是否已登记申请。
// GET /api/v1/applications/check?posting_id=
func (h *ApplicationHandler) HandleCheck(ctx context.Context, c *app.RequestContext) {
	postingID := c.Query("posting_id")
	if postingID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "posting_id 不能为空"})
		return
	}

	applied, err := h.tracker.CheckApplied(ctx, postingID)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"posting_id": postingID,
		"applied":    applied,
	})
}

// HandleStats 返回申请统计汇总。
// GET /api/v1/applications/stats
func (h *ApplicationHandler) HandleStats(ctx context.Context, c *app.RequestContext) {
	stats, err := h.tracker.Stats(ctx)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"data": stats})
}
