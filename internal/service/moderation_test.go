package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"openmind/internal/model"
	"openmind/internal/webhook"
)

func TestIsBlinded_Boundary(t *testing.T) {
	cases := []struct {
		score int
		want  bool
	}{
		{0, false},
		{2, false},
		{3, true},
		{4, true},
		{5, true},
	}
	for _, tc := range cases {
		if got := IsBlinded(tc.score); got != tc.want {
			t.Errorf("IsBlinded(%d) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestRedactRecord_Blinded(t *testing.T) {
	rec := model.OpinionRecord{
		ID:            "op-1",
		Name:          "김직원",
		Title:         "문제가 있는 제목",
		Asis:          "문제가 있는 내용",
		Tobe:          "개선안",
		Status:        model.LabelSubmitted,
		NegativeScore: 3,
		ProcID:        "9999001",
		ProcName:      "관리자김",
		ProcDesc:      "검토중입니다",
	}

	got := RedactRecord(rec)

	if got.Name != AnonymousName {
		t.Errorf("Name = %q, want %q", got.Name, AnonymousName)
	}
	if got.Title != BlindNotice || got.Asis != BlindNotice {
		t.Errorf("title/asis not replaced: %q / %q", got.Title, got.Asis)
	}
	if got.Tobe != "" || got.Effect != "" || got.CaseStudy != "" {
		t.Error("body fields should be cleared")
	}
	if got.Status != model.LabelBlinded {
		t.Errorf("Status = %q, want %q", got.Status, model.LabelBlinded)
	}
	if got.ProcID != "" || got.ProcName != "" || got.ProcDesc != "" {
		t.Error("processing fields should be cleared")
	}
	// 原始值不应被修改
	if rec.Name != "김직원" {
		t.Error("input record mutated")
	}
}

func TestRedactRecord_NotBlinded(t *testing.T) {
	rec := model.OpinionRecord{
		ID:            "op-2",
		Name:          "김직원",
		Title:         "정상 제목",
		NegativeScore: 2,
	}
	got := RedactRecord(rec)
	if got != rec {
		t.Errorf("record below threshold should pass through unchanged, got %+v", got)
	}
}

// 审核门的阈值判定必须在列表、检索、详情、导出四个出口一致生效。
func TestModerationGate_SurfacesAgreeAtBoundary(t *testing.T) {
	cases := []struct {
		score   int
		blinded bool
	}{
		{2, false},
		{3, true},
		{4, true},
	}
	for _, tc := range cases {
		op := model.Opinion{
			ID: "op-b", Seq: 1, Title: "경계값 의견", Asis: "현황", Tobe: "제안",
			UserID: strPtr("2024001"), Status: "대기", NegativeScore: tc.score,
			RegDate: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		}
		opinionRepo := &fakeOpinionRepo{
			findAllFn: func() ([]model.Opinion, error) { return []model.Opinion{op}, nil },
			findByIDFn: func(id string) (*model.Opinion, error) {
				if id == op.ID {
					return &op, nil
				}
				return nil, gorm.ErrRecordNotFound
			},
		}
		hook := &fakeHook{
			searchFn: func(ctx context.Context, req webhook.SearchRequest) ([]model.OpinionRecord, error) {
				return []model.OpinionRecord{{ID: op.ID, Title: op.Title, Status: op.Status, NegativeScore: tc.score}}, nil
			},
		}
		svc := NewOpinionService(opinionRepo, &fakeLookupRepo{}, &fakeUserRepo{}, &fakeHistoryRepo{}, hook)

		// 列表
		listed, err := svc.List(memberSession(), Criteria{})
		if err != nil {
			t.Fatalf("score %d: List: %v", tc.score, err)
		}
		if len(listed) != 1 {
			t.Fatalf("score %d: list len = %d", tc.score, len(listed))
		}
		if got := listed[0].Title == BlindNotice; got != tc.blinded {
			t.Errorf("score %d: list masked = %v, want %v", tc.score, got, tc.blinded)
		}

		// 管理员检索
		searched, err := svc.AdminSearch(context.Background(), adminSession(), 2025, "Q1", Criteria{})
		if err != nil {
			t.Fatalf("score %d: AdminSearch: %v", tc.score, err)
		}
		if len(searched) != 1 {
			t.Fatalf("score %d: search len = %d", tc.score, len(searched))
		}
		if got := searched[0].Title == BlindNotice; got != tc.blinded {
			t.Errorf("score %d: search masked = %v, want %v", tc.score, got, tc.blinded)
		}

		// 详情
		_, err = svc.Detail(memberSession(), op.ID)
		if got := errors.Is(err, ErrOpinionBlinded); got != tc.blinded {
			t.Errorf("score %d: detail blinded = %v (err=%v), want %v", tc.score, got, err, tc.blinded)
		}

		// 导出：被遮蔽的唯一一行整行排除
		_, _, err = NewExportService().ExportOpinions(searched)
		if got := errors.Is(err, ErrNothingToExport); got != tc.blinded {
			t.Errorf("score %d: export excluded = %v (err=%v), want %v", tc.score, got, err, tc.blinded)
		}
	}
}

func TestRedactRecords(t *testing.T) {
	recs := []model.OpinionRecord{
		{ID: "a", Name: "김직원", NegativeScore: 2},
		{ID: "b", Name: "이직원", NegativeScore: 4},
	}
	got := RedactRecords(recs)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "김직원" {
		t.Errorf("clean record changed: %q", got[0].Name)
	}
	if got[1].Name != AnonymousName {
		t.Errorf("blinded record not masked: %q", got[1].Name)
	}
}
