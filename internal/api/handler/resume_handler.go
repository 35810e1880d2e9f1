package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/ats"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/profile"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/storage"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/storage/models"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/types"
)

// ResumeHandler 负责简历上传与分析相关请求
type ResumeHandler struct {
	cfg       *config.Config
	storage   *storage.Storage
	builder   *profile.Builder
	atsEngine *ats.Engine
}

// NewResumeHandler 创建一个新的 ResumeHandler 实例
func NewResumeHandler(cfg *config.Config, storage *storage.Storage) *ResumeHandler {
	return &ResumeHandler{
		cfg:       cfg,
		storage:   storage,
		builder:   profile.NewBuilder(cfg.Profile),
		atsEngine: ats.NewEngine(cfg.Scoring.ATS),
	}
}

// HandleResumeUpload 处理简历上传请求。
// POST /api/v1/resume/upload
// 接受multipart文件(纯文本)或表单字段text，二选一。
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, c *app.RequestContext) {
	text, filename, err := h.readResumeText(c)
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		return
	}

	resumeID := uuid.NewString()
	p := h.builder.Build(text)
	result := h.atsEngine.Analyze(p)

	// 原始文本存MinIO，画像进Redis，元数据落MySQL。
	// 任一存储不可用时降级为仅返回分析结果。
	var objectKey string
	if h.storage.MinIO != nil {
		objectKey, err = h.storage.MinIO.UploadResumeText(ctx, resumeID, text)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("resume_id", resumeID).Msg("上传简历文本失败")
		}
	}

	if h.storage.MySQL != nil {
		atsScore := float64(result.TotalScore)
		upload := &models.ResumeUpload{
			ResumeID:         resumeID,
			OriginalFilename: filename,
			TextObjectKey:    objectKey,
			WordCount:        p.WordCount,
			SkillCount:       len(p.Skills),
			ExperienceYears:  p.ExperienceYears,
			AtsScore:         &atsScore,
		}
		if err := h.storage.MySQL.CreateResumeUpload(ctx, upload); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("resume_id", resumeID).Msg("登记简历上传失败")
		}
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.CacheResumeProfile(ctx, resumeID, p); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("resume_id", resumeID).Msg("缓存简历画像失败")
		}
	}

	c.JSON(consts.StatusOK, utils.H{
		"resume_id":        resumeID,
		"word_count":       p.WordCount,
		"skills":           p.Skills,
		"experience_years": p.ExperienceYears,
		"ats_analysis":     result,
	})
}

// HandleResumeAnalysis 返回已上传简历的ATS分析。
// GET /api/v1/resume/:resume_id/analysis
func (h *ResumeHandler) HandleResumeAnalysis(ctx context.Context, c *app.RequestContext) {
	resumeID := c.Param("resume_id")
	if resumeID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "resume_id 不能为空"})
		return
	}

	p, err := h.loadProfile(ctx, resumeID)
	if err != nil {
		c.JSON(consts.StatusNotFound, utils.H{"error": "简历不存在或已过期"})
		return
	}

	result := h.atsEngine.Analyze(p)
	c.JSON(consts.StatusOK, utils.H{
		"resume_id":        resumeID,
		"word_count":       p.WordCount,
		"skills":           p.Skills,
		"experience_years": p.ExperienceYears,
		"ats_analysis":     result,
	})
}

// loadProfile 读取简历画像：优先Redis缓存，未命中时从MinIO文本重建并回填缓存
func (h *ResumeHandler) loadProfile(ctx context.Context, resumeID string) (*types.ResumeProfile, error) {
	if h.storage.Redis != nil {
		p, err := h.storage.Redis.GetResumeProfile(ctx, resumeID)
		if err == nil {
			return p, nil
		}
		if err != storage.ErrNotFound {
			logger.Ctx(ctx).Warn().Err(err).Str("resume_id", resumeID).Msg("读取简历画像缓存失败")
		}
	}

	if h.storage.MySQL == nil || h.storage.MinIO == nil {
		return nil, fmt.Errorf("简历画像缓存未命中且无法重建")
	}

	upload, err := h.storage.MySQL.GetResumeUploadByID(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("查询简历上传记录失败: %w", err)
	}
	text, err := h.storage.MinIO.GetResumeText(ctx, upload.TextObjectKey)
	if err != nil {
		return nil, fmt.Errorf("下载简历文本失败: %w", err)
	}

	p := h.builder.Build(text)
	if h.storage.Redis != nil {
		if err := h.storage.Redis.CacheResumeProfile(ctx, resumeID, p); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("resume_id", resumeID).Msg("回填简历画像缓存失败")
		}
	}
	return p, nil
}

// readResumeText 从multipart文件或text表单字段提取简历文本
func (h *ResumeHandler) readResumeText(c *app.RequestContext) (text, filename string, err error) {
	if fileHeader, ferr := c.FormFile("file"); ferr == nil {
		file, oerr := fileHeader.Open()
		if oerr != nil {
			return "", "", fmt.Errorf("打开文件失败")
		}
		defer file.Close()

		data, rerr := io.ReadAll(file)
		if rerr != nil {
			return "", "", fmt.Errorf("读取文件失败")
		}
		text = string(data)
		filename = fileHeader.Filename
	} else {
		text = c.PostForm("text")
		filename = "inline-text"
	}

	if len(text) == 0 {
		return "", "", fmt.Errorf("简历内容为空")
	}
	return text, filename, nil
}
