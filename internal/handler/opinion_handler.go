package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"openmind/internal/service"
	"openmind/pkg/log"
)

// OpinionHandler 负责意见的列表、详情和提交接口。
// 列表/详情读数据库，提交转发外部 Webhook，脱敏在 Service 层统一完成。
type OpinionHandler struct {
	opinionService service.OpinionService
}

func NewOpinionHandler(opinionService service.OpinionService) *OpinionHandler {
	return &OpinionHandler{opinionService: opinionService}
}

// SubmitRequest 是意见提交接口请求体。八个字段全部必填。
type SubmitRequest struct {
	Category         string `json:"category" binding:"required"`
	Company          string `json:"company" binding:"required"`
	Department       string `json:"department" binding:"required"`
	EmployeeID       string `json:"employeeId" binding:"required"`
	Name             string `json:"name" binding:"required"`
	Title            string `json:"title" binding:"required"`
	CurrentSituation string `json:"currentSituation" binding:"required"`
	Suggestion       string `json:"suggestion" binding:"required"`
}

// parseCriteria 从查询参数解析过滤条件。所有维度缺省不限。
func parseCriteria(c *gin.Context) service.Criteria {
	criteria := service.Criteria{
		Text:       c.Query("q"),
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		Company:    c.Query("company"),
		EmployeeID: c.Query("employeeId"),
	}
	if v := c.Query("dateFrom"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			criteria.DateFrom = t
		}
	}
	if v := c.Query("dateTo"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			criteria.DateTo = t
		}
	}
	return criteria
}

// List 返回按登记时间倒序的意见列表，支持关键词/状态/分类/系列社过滤。
func (h *OpinionHandler) List(c *gin.Context) {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return
	}

	records, err := h.opinionService.List(sess, parseCriteria(c))
	if err != nil {
		log.Warnf("List: failed to list opinions: %v", err)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "OK",
		"data":    records,
	})
}

// Detail 返回单条意见详情。被遮蔽的意见拒绝访问。
func (h *OpinionHandler) Detail(c *gin.Context) {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return
	}

	detail, err := h.opinionService.Detail(sess, c.Param("id"))
	if err != nil {
		log.Warnf("Detail: failed to load opinion %q: %v", c.Param("id"), err)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "OK",
		"data":    detail,
	})
}

// Submit 处理意见提交。
func (h *OpinionHandler) Submit(c *gin.Context) {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Submit: failed to bind request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	err := h.opinionService.Submit(c.Request.Context(), sess, service.SubmitInput{
		Category:         req.Category,
		Company:          req.Company,
		Department:       req.Department,
		EmployeeID:       req.EmployeeID,
		Name:             req.Name,
		Title:            req.Title,
		CurrentSituation: req.CurrentSituation,
		Suggestion:       req.Suggestion,
	})
	if err != nil {
		log.Warnf("Submit: failed to submit opinion for %q: %v", sess.EmployeeID, err)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "Opinion submitted",
	})
}
