package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"openmind/internal/service"
	"openmind/pkg/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// DashboardHandler 负责仪表盘快照接口和实时推送。
// HTTP 接口返回当前快照；WebSocket 在每次后台重算后推送新快照，
// 前端无需再按 30 秒轮询。
type DashboardHandler struct {
	statsService service.StatsService
	upgrader     websocket.Upgrader
}

func NewDashboardHandler(statsService service.StatsService) *DashboardHandler {
	return &DashboardHandler{
		statsService: statsService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 仪表盘只挂在管理员路由组下，升级前已过两层鉴权
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stats 返回当前仪表盘快照。
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Snapshot(c.Request.Context())
	if err != nil {
		log.Warnf("Stats: failed to load snapshot: %v", err)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "OK",
		"data":    stats,
	})
}

// Live 升级为 WebSocket 并持续推送快照。
// 连接建立后先推一帧当前快照，之后跟随后台刷新节奏。
func (h *DashboardHandler) Live(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnf("Live: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.statsService.Subscribe()
	defer cancel()

	// 读循环只处理 pong 和关闭，客户端消息一律忽略
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// 首帧：当前快照
	if stats, err := h.statsService.Snapshot(c.Request.Context()); err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(stats); err != nil {
			return
		}
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case stats, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(stats); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
