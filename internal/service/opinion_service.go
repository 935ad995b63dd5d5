package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"openmind/internal/model"
	"openmind/internal/repository"
	"openmind/internal/webhook"
	"openmind/pkg/log"
)

var (
	// ErrOpinionNotFound 意见不存在
	ErrOpinionNotFound = errors.New("opinion not found")
	// ErrOpinionBlinded 意见已被遮蔽，不允许查看详情
	ErrOpinionBlinded = errors.New("opinion is blinded")
	// ErrForbidden 当前用户无权执行该操作
	ErrForbidden = errors.New("forbidden")
)

// ValidationError 字段级校验错误，Fields 的 key 是对外的字段名。
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Fields))
}

// 提交内容的长度上限（按 rune 计数，去除 emoji 之后）
const (
	maxTitleRunes = 100
	maxBodyRunes  = 1000
)

// SubmitInput 意见提交请求。八个字段全部必填。
type SubmitInput struct {
	Category         string
	Company          string
	Department       string
	EmployeeID       string
	Name             string
	Title            string
	CurrentSituation string
	Suggestion       string
}

// UpdateInput 管理员处理请求：目标状态 + 处理意见。
type UpdateInput struct {
	Status   string
	ProcDesc string
}

// OpinionDetail 详情视图：意见行 + 处理履历（仅管理员返回履历）。
type OpinionDetail struct {
	Record  model.OpinionRecord       `json:"record"`
	History []model.ProcessingHistory `json:"history,omitempty"`
}

// OpinionService 意见读写服务。
// 读路径走数据库（gorm），写路径全部转发外部 Webhook：本服务对
// opinion 表没有任何写权限，处理履历是唯一的本地落库。
type OpinionService interface {
	// List 返回按登记时间倒序的意见列表，已过审核门脱敏。
	// 非管理员只在 반려/처리완료 状态下能看到处理区块。
	List(sess *model.Session, c Criteria) ([]model.OpinionRecord, error)
	// Detail 返回单条意见；被遮蔽的意见返回 ErrOpinionBlinded。
	Detail(sess *model.Session, id string) (*OpinionDetail, error)
	// Submit 校验并把一条新意见转发给提交 Webhook。
	Submit(ctx context.Context, sess *model.Session, in SubmitInput) error
	// Update 管理员处理意见：校验、转发处理 Webhook、本地记录处理履历。
	Update(ctx context.Context, sess *model.Session, id string, in UpdateInput) error
	// AdminSearch 管理员按季度走外部检索 Webhook，再叠加本地过滤与脱敏。
	AdminSearch(ctx context.Context, sess *model.Session, year int, quarter string, c Criteria) ([]model.OpinionRecord, error)
}

type opinionService struct {
	opinionRepo repository.OpinionRepository
	lookupRepo  repository.LookupRepository
	userRepo    repository.UserRepository
	historyRepo repository.HistoryRepository
	hook        webhook.Caller
}

func NewOpinionService(
	opinionRepo repository.OpinionRepository,
	lookupRepo repository.LookupRepository,
	userRepo repository.UserRepository,
	historyRepo repository.HistoryRepository,
	hook webhook.Caller,
) OpinionService {
	return &opinionService{
		opinionRepo: opinionRepo,
		lookupRepo:  lookupRepo,
		userRepo:    userRepo,
		historyRepo: historyRepo,
		hook:        hook,
	}
}

// lookups 一次性加载的字典快照。
type lookups struct {
	catName     map[string]string
	companyName map[string]string
	users       map[string]model.User
}

func (s *opinionService) loadLookups() (*lookups, error) {
	categories, err := s.lookupRepo.FindCategories()
	if err != nil {
		return nil, err
	}
	companies, err := s.lookupRepo.FindCompanies()
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	l := &lookups{
		catName:     make(map[string]string, len(categories)),
		companyName: make(map[string]string, len(companies)),
		users:       make(map[string]model.User, len(users)),
	}
	for _, c := range categories {
		l.catName[c.ID] = c.Name
	}
	for _, c := range companies {
		l.companyName[c.ID] = c.Name
	}
	for _, u := range users {
		l.users[u.ID] = u
	}
	return l, nil
}

// toRecord 把数据库模型展开成对外的意见行（外键换名称、附带提交人信息）。
func (l *lookups) toRecord(op model.Opinion) model.OpinionRecord {
	rec := model.OpinionRecord{
		ID:            op.ID,
		Seq:           op.Seq,
		Title:         op.Title,
		Asis:          op.Asis,
		Tobe:          op.Tobe,
		Effect:        op.Effect,
		CaseStudy:     op.CaseStudy,
		Status:        model.StatusLabel(op.Status),
		RegDate:       op.RegDate.Format("2006-01-02 15:04:05"),
		NegativeScore: op.NegativeScore,
		Category:      FallbackBucket,
		Company:       FallbackBucket,
	}
	if op.CategoryID != nil {
		if name, ok := l.catName[*op.CategoryID]; ok {
			rec.Category = name
		}
	}
	if op.CompanyID != nil {
		if name, ok := l.companyName[*op.CompanyID]; ok {
			rec.Company = name
		}
	}
	if op.UserID != nil {
		rec.UserID = *op.UserID
		if u, ok := l.users[*op.UserID]; ok {
			rec.Name = u.Name
			rec.Dept = u.Dept
		}
	}
	return rec
}

// hideProcessing 清空处理区块。非管理员只在 반려/처리완료 时可见。
func hideProcessing(rec model.OpinionRecord) model.OpinionRecord {
	rec.ProcID = ""
	rec.ProcName = ""
	rec.ProcDesc = ""
	return rec
}

// attachProcessing 把最新一条处理履历挂到意见行上。
func (s *opinionService) attachProcessing(rec model.OpinionRecord) model.OpinionRecord {
	histories, err := s.historyRepo.FindByOpinionID(rec.ID)
	if err != nil || len(histories) == 0 {
		return rec
	}
	latest := histories[0]
	if latest.ProcessorID != nil {
		rec.ProcID = *latest.ProcessorID
	}
	rec.ProcName = latest.ProcName
	rec.ProcDesc = latest.ProcDesc
	return rec
}

func (s *opinionService) List(sess *model.Session, c Criteria) ([]model.OpinionRecord, error) {
	opinions, err := s.opinionRepo.FindAll()
	if err != nil {
		log.Errorf("List: failed to load opinions: %v", err)
		return nil, ErrInternal
	}
	l, err := s.loadLookups()
	if err != nil {
		log.Errorf("List: failed to load lookups: %v", err)
		return nil, ErrInternal
	}

	records := make([]model.OpinionRecord, 0, len(opinions))
	for _, op := range opinions {
		records = append(records, s.attachProcessing(l.toRecord(op)))
	}

	// 先过滤后脱敏：过滤条件作用于原始字段
	records = Filter(records, c)
	out := make([]model.OpinionRecord, 0, len(records))
	for _, rec := range records {
		rec = RedactRecord(rec)
		if !sess.IsAdmin() && !model.ProcessingVisibleToSubmitter(rec.Status) {
			rec = hideProcessing(rec)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *opinionService) Detail(sess *model.Session, id string) (*OpinionDetail, error) {
	op, err := s.opinionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpinionNotFound
		}
		log.Errorf("Detail: failed to load opinion %q: %v", id, err)
		return nil, ErrInternal
	}
	if op == nil {
		return nil, ErrOpinionNotFound
	}
	// 被遮蔽意见对任何人都不开放详情，管理员也通过列表看到替换文案
	if IsBlinded(op.NegativeScore) {
		return nil, ErrOpinionBlinded
	}

	l, err := s.loadLookups()
	if err != nil {
		log.Errorf("Detail: failed to load lookups: %v", err)
		return nil, ErrInternal
	}
	rec := s.attachProcessing(l.toRecord(*op))

	detail := &OpinionDetail{Record: rec}
	if sess.IsAdmin() {
		histories, err := s.historyRepo.FindByOpinionID(id)
		if err != nil {
			log.Warnf("Detail: failed to load history for %q: %v", id, err)
		} else {
			detail.History = histories
		}
	} else if !model.ProcessingVisibleToSubmitter(rec.Status) {
		detail.Record = hideProcessing(detail.Record)
	}
	return detail, nil
}

func (s *opinionService) Submit(ctx context.Context, sess *model.Session, in SubmitInput) error {
	if sess == nil {
		return ErrForbidden
	}

	fields := map[string]string{}
	clean := func(name, v string, max int) string {
		v = strings.TrimSpace(stripEmoji(v))
		if v == "" {
			fields[name] = "required"
		} else if utf8.RuneCountInString(v) > max {
			fields[name] = fmt.Sprintf("must be at most %d characters", max)
		}
		return v
	}

	in.Category = clean("category", in.Category, maxTitleRunes)
	in.Company = clean("company", in.Company, maxTitleRunes)
	in.Department = clean("department", in.Department, maxTitleRunes)
	in.EmployeeID = clean("employeeId", in.EmployeeID, maxTitleRunes)
	in.Name = clean("name", in.Name, maxTitleRunes)
	in.Title = clean("title", in.Title, maxTitleRunes)
	in.CurrentSituation = clean("currentSituation", in.CurrentSituation, maxBodyRunes)
	in.Suggestion = clean("suggestion", in.Suggestion, maxBodyRunes)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	// id/seq 由外部存储分配，seq 必须显式送 null
	err := s.hook.SubmitOpinion(ctx, webhook.SubmitRequest{
		Seq:              nil,
		Category:         in.Category,
		Company:          in.Company,
		Department:       in.Department,
		EmployeeID:       in.EmployeeID,
		Name:             in.Name,
		Title:            in.Title,
		CurrentSituation: in.CurrentSituation,
		Suggestion:       in.Suggestion,
		UserInfo: map[string]string{
			"id":      sess.EmployeeID,
			"name":    sess.Name,
			"company": sess.Company,
			"dept":    sess.Dept,
		},
	})
	if err != nil {
		log.Errorf("Submit: webhook call failed for %q: %v", sess.EmployeeID, err)
		return ErrInternal
	}
	return nil
}

func (s *opinionService) Update(ctx context.Context, sess *model.Session, id string, in UpdateInput) error {
	// 服务端授权：不信任任何来自客户端的角色声明
	if !sess.IsAdmin() {
		return ErrForbidden
	}

	fields := map[string]string{}
	in.Status = strings.TrimSpace(in.Status)
	in.ProcDesc = strings.TrimSpace(in.ProcDesc)
	if in.Status == "" {
		fields["status"] = "required"
	}
	if in.ProcDesc == "" {
		fields["procDesc"] = "required"
	}
	var target model.Status
	if in.Status != "" {
		var ok bool
		target, ok = model.StatusFromLabel(in.Status)
		if !ok {
			fields["status"] = "unknown status"
		}
	}
	// 校验不过时不发起任何 Webhook 调用
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	op, err := s.opinionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOpinionNotFound
		}
		log.Errorf("Update: failed to load opinion %q: %v", id, err)
		return ErrInternal
	}
	if op == nil {
		return ErrOpinionNotFound
	}
	if from, ok := model.StatusFromLabel(model.StatusLabel(op.Status)); ok {
		if !model.CanTransition(from, target) {
			return &ValidationError{Fields: map[string]string{"status": "transition not allowed"}}
		}
	}

	l, err := s.loadLookups()
	if err != nil {
		log.Errorf("Update: failed to load lookups: %v", err)
		return ErrInternal
	}
	rec := l.toRecord(*op)

	now := time.Now()
	// 完整快照 + 处理元数据一起转发，外部流程据此覆盖写
	err = s.hook.UpdateOpinion(ctx, webhook.UpdateRequest{
		ID:            rec.ID,
		Seq:           rec.Seq,
		Name:          rec.Name,
		Dept:          rec.Dept,
		Company:       rec.Company,
		Category:      rec.Category,
		Title:         rec.Title,
		Asis:          rec.Asis,
		Tobe:          rec.Tobe,
		Effect:        rec.Effect,
		CaseStudy:     rec.CaseStudy,
		Status:        target.Label(),
		ProcID:        sess.EmployeeID,
		ProcName:      sess.Name,
		ProcDesc:      in.ProcDesc,
		ProcDate:      now.Format("2006-01-02 15:04:05"),
		NegativeScore: rec.NegativeScore,
		RegDate:       rec.RegDate,
	})
	if err != nil {
		log.Errorf("Update: webhook call failed for opinion %q: %v", id, err)
		return ErrInternal
	}

	// Webhook 确认后再记本地处理履历；履历写失败不回滚外部处理
	processorID := sess.EmployeeID
	opinionID := id
	history := &model.ProcessingHistory{
		ID:          newHistoryID(),
		OpinionID:   &opinionID,
		ProcessorID: &processorID,
		ProcName:    sess.Name,
		ProcDesc:    in.ProcDesc,
		Status:      target.Label(),
		ProcessedAt: &now,
	}
	if err := s.historyRepo.Create(history); err != nil {
		log.Errorf("Update: failed to record history for opinion %q: %v", id, err)
	}
	return nil
}

func (s *opinionService) AdminSearch(ctx context.Context, sess *model.Session, year int, quarter string, c Criteria) ([]model.OpinionRecord, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	sDate, eDate, err := QuarterRange(year, quarter)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"quarter": err.Error()}}
	}

	records, err := s.hook.SearchOpinions(ctx, webhook.SearchRequest{
		SDate:      sDate,
		EDate:      eDate,
		Company:    searchFilterValue(c.Company),
		EmployeeID: c.EmployeeID,
		Category:   searchFilterValue(c.Category),
		Status:     searchFilterValue(c.Status),
	})
	if err != nil {
		log.Errorf("AdminSearch: webhook call failed: %v", err)
		return nil, ErrInternal
	}

	// 外部检索不保证全部条件生效，本地再过滤一遍，然后统一脱敏
	return RedactRecords(Filter(records, c)), nil
}

// searchFilterValue 把 "all" 哨兵翻译成 Webhook 契约的空串。
func searchFilterValue(v string) string {
	if wildcard(v) {
		return ""
	}
	return v
}

// newHistoryID 生成处理履历主键（16 字节随机数的十六进制串）。
func newHistoryID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("ph-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
