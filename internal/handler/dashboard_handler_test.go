package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"openmind/internal/service"
)

func newDashboardRouter(h *DashboardHandler) *gin.Engine {
	r := gin.New()
	grp := r.Group("/api/admin", withSession(adminSession()))
	grp.GET("/dashboard", h.Stats)
	grp.GET("/dashboard/ws", h.Live)
	return r
}

func TestDashboardStats(t *testing.T) {
	svc := &fakeStatsService{
		snapshotFn: func(ctx context.Context) (*service.DashboardStats, error) {
			return &service.DashboardStats{
				TotalCount:       5,
				ProcessedCount:   2,
				ProcessingRate:   40,
				ParticipantCount: 3,
			}, nil
		},
	}
	r := newDashboardRouter(NewDashboardHandler(svc))

	w := doReq(r, http.MethodGet, "/api/admin/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data service.DashboardStats `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.TotalCount != 5 || resp.Data.ProcessingRate != 40 {
		t.Errorf("unexpected data: %+v", resp.Data)
	}
}

func TestDashboardStats_Error(t *testing.T) {
	svc := &fakeStatsService{
		snapshotFn: func(ctx context.Context) (*service.DashboardStats, error) {
			return nil, errors.New("db down")
		},
	}
	r := newDashboardRouter(NewDashboardHandler(svc))

	w := doReq(r, http.MethodGet, "/api/admin/dashboard", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expect 500, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestDashboardLive_RejectsPlainHTTP(t *testing.T) {
	r := newDashboardRouter(NewDashboardHandler(&fakeStatsService{}))

	// 不带 Upgrade 头的普通请求无法完成握手
	w := doReq(r, http.MethodGet, "/api/admin/dashboard/ws", "")
	if w.Code == http.StatusOK {
		t.Fatalf("plain request should not succeed, got %d", w.Code)
	}
}
