package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"openmind/internal/service"
	"openmind/pkg/log"
)

// AdminHandler 负责管理员侧接口：意见检索、处理、导出和用户管理。
// 路由组挂载 AdminAuthMiddleware，Service 层还会再做一次角色判定，
// 两层都不信任客户端自报的角色。
type AdminHandler struct {
	opinionService service.OpinionService
	exportService  service.ExportService
	userService    service.UserService
}

func NewAdminHandler(opinionService service.OpinionService, exportService service.ExportService, userService service.UserService) *AdminHandler {
	return &AdminHandler{
		opinionService: opinionService,
		exportService:  exportService,
		userService:    userService,
	}
}

// UpdateOpinionRequest 是管理员处理意见的请求体。
type UpdateOpinionRequest struct {
	Status   string `json:"status" binding:"required"`
	ProcDesc string `json:"procDesc" binding:"required"`
}

// parseSearchPeriod 解析 year/quarter 查询参数，缺省取当前季度。
func parseSearchPeriod(c *gin.Context) (int, string) {
	year, quarter := service.CurrentQuarter(time.Now())
	if v := c.Query("year"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			year = parsed
		}
	}
	if v := c.Query("quarter"); v != "" {
		quarter = v
	}
	return year, quarter
}

// Search 按季度走外部检索 Webhook，再叠加本地过滤与脱敏。
func (h *AdminHandler) Search(c *gin.Context) {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return
	}

	year, quarter := parseSearchPeriod(c)
	records, err := h.opinionService.AdminSearch(c.Request.Context(), sess, year, quarter, parseCriteria(c))
	if err != nil {
		log.Warnf("Search: admin search failed: %v", err)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "OK",
		"data":    records,
	})
}

// Update 处理意见状态流转：转发处理 Webhook 并记录本地处理履历。
func (h *AdminHandler) Update(c *gin.Context) {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return
	}

	var req UpdateOpinionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Update: failed to bind request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	id := c.Param("id")
	err := h.opinionService.Update(c.Request.Context(), sess, id, service.UpdateInput{
		Status:   req.Status,
		ProcDesc: req.ProcDesc,
	})
	if err != nil {
		log.Warnf("Update: failed to update opinion %q: %v", id, err)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Opinion updated",
	})
}

// Export 把检索结果导出为 xlsx 下载。检索条件与 Search 完全一致。
func (h *AdminHandler) Export(c *gin.Context) {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return
	}

	year, quarter := parseSearchPeriod(c)
	records, err := h.opinionService.AdminSearch(c.Request.Context(), sess, year, quarter, parseCriteria(c))
	if err != nil {
		log.Warnf("Export: admin search failed: %v", err)
		writeServiceError(c, err)
		return
	}

	data, filename, err := h.exportService.ExportOpinions(records)
	if err != nil {
		log.Warnf("Export: failed to build workbook: %v", err)
		writeServiceError(c, err)
		return
	}

	// 文件名含韩文，按 RFC 5987 编码进 filename*
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Users 返回用户名单，支持姓名/工号/邮箱的关键词过滤。
func (h *AdminHandler) Users(c *gin.Context) {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), sess, c.Query("search"))
	if err != nil {
		log.Warnf("Users: failed to list users: %v", err)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "OK",
		"data":    users,
	})
}
