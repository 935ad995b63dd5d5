package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"openmind/internal/repository"
	"openmind/pkg/log"
)

// statsCacheKey 仪表盘快照在 Redis 中的缓存键。
const statsCacheKey = "dashboard:stats"

// StatsService 仪表盘统计服务。
// 快照由后台 Refresher 周期性重算并写入 Redis，读接口优先走缓存；
// WebSocket 推送通过 Subscribe 订阅每次重算结果。
type StatsService interface {
	// Snapshot 返回当前快照：优先读 Redis 缓存，缓存缺失时同步重算一次。
	Snapshot(ctx context.Context) (*DashboardStats, error)
	// Refresh 强制重算快照，写缓存并广播给订阅者。
	Refresh(ctx context.Context) (*DashboardStats, error)
	// Subscribe 订阅快照更新。返回只读通道和取消函数；
	// 订阅者消费过慢时会丢弃中间帧，只保证收到较新的快照。
	Subscribe() (<-chan *DashboardStats, func())
	// Run 启动周期刷新循环，ctx 取消时退出。由 main 在独立 goroutine 中调用。
	Run(ctx context.Context, interval time.Duration)
}

type statsService struct {
	opinionRepo repository.OpinionRepository
	lookupRepo  repository.LookupRepository
	userRepo    repository.UserRepository
	rdb         *redis.Client

	population  int
	recentLimit int
	cacheTTL    time.Duration

	mu     sync.Mutex
	nextID int
	subs   map[int]chan *DashboardStats
}

func NewStatsService(
	opinionRepo repository.OpinionRepository,
	lookupRepo repository.LookupRepository,
	userRepo repository.UserRepository,
	rdb *redis.Client,
	population, recentLimit int,
	cacheTTL time.Duration,
) StatsService {
	return &statsService{
		opinionRepo: opinionRepo,
		lookupRepo:  lookupRepo,
		userRepo:    userRepo,
		rdb:         rdb,
		population:  population,
		recentLimit: recentLimit,
		cacheTTL:    cacheTTL,
		subs:        make(map[int]chan *DashboardStats),
	}
}

func (s *statsService) Snapshot(ctx context.Context) (*DashboardStats, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, statsCacheKey).Bytes()
		if err == nil {
			var stats DashboardStats
			if err := json.Unmarshal(raw, &stats); err == nil {
				return &stats, nil
			}
			// 缓存内容损坏：当作未命中，重算覆盖
			log.Warnf("Snapshot: corrupt cache at %s, recomputing", statsCacheKey)
		} else if err != redis.Nil {
			// Redis 故障时降级为直接重算，不让仪表盘跟着不可用
			log.Errorf("Snapshot: redis get failed: %v", err)
		}
	}
	return s.Refresh(ctx)
}

func (s *statsService) Refresh(ctx context.Context) (*DashboardStats, error) {
	opinions, err := s.opinionRepo.FindAll()
	if err != nil {
		return nil, err
	}
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

	stats := Aggregate(opinions, categories, companies, users, s.population, s.recentLimit)

	if s.rdb != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, statsCacheKey, raw, s.cacheTTL).Err(); err != nil {
				// 缓存写失败只记日志，快照本身照常返回
				log.Errorf("Refresh: redis set failed: %v", err)
			}
		}
	}

	s.broadcast(stats)
	return stats, nil
}

func (s *statsService) Subscribe() (<-chan *DashboardStats, func()) {
	// 缓冲为 1，配合 broadcast 的丢帧策略，保证慢消费者不阻塞刷新循环
	ch := make(chan *DashboardStats, 1)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// broadcast 把新快照推给全部订阅者，通道已满时先丢弃旧帧。
func (s *statsService) broadcast(stats *DashboardStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- stats:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- stats:
			default:
			}
		}
	}
}

func (s *statsService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 启动即刷新一次，避免首个请求落到空缓存
	if _, err := s.Refresh(ctx); err != nil {
		log.Errorf("stats refresher: initial refresh failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				log.Errorf("stats refresher: refresh failed: %v", err)
			}
		}
	}
}
