package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

// GormStore adapts the thin repository functions to the store interfaces the
// services depend on.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

func (s *GormStore) SaveScript(ctx context.Context, sc *domain.Script) error {
	return CreateScript(ctx, s.DB, sc)
}

func (s *GormStore) GetScript(ctx context.Context, id string) (*domain.Script, error) {
	return GetScript(ctx, s.DB, id)
}

func (s *GormStore) ListScripts(ctx context.Context, userID string, offset, limit int) ([]domain.Script, error) {
	return ListScriptsPage(ctx, s.DB, userID, offset, limit)
}

func (s *GormStore) CountScripts(ctx context.Context, userID string) (int64, error) {
	return CountScripts(ctx, s.DB, userID)
}

func (s *GormStore) RecentScripts(ctx context.Context, limit int) ([]domain.Script, error) {
	return RecentScripts(ctx, s.DB, limit)
}

func (s *GormStore) ScriptsStats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return ScriptsStats(ctx, s.DB, userID)
}

func (s *GormStore) SaveVideo(ctx context.Context, v *domain.Video) error {
	return CreateVideo(ctx, s.DB, v)
}

func (s *GormStore) GetVideo(ctx context.Context, id string) (*domain.Video, error) {
	return GetVideo(ctx, s.DB, id)
}

func (s *GormStore) ListVideos(ctx context.Context, userID string, offset, limit int) ([]domain.Video, error) {
	return ListVideosPage(ctx, s.DB, userID, offset, limit)
}

func (s *GormStore) CreateUser(ctx context.Context, u *domain.User) error {
	return CreateUser(ctx, s.DB, u)
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return GetUser(ctx, s.DB, id)
}

func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	return CountUsers(ctx, s.DB)
}

func (s *GormStore) UpdateUserPlan(ctx context.Context, id, plan string, now time.Time) error {
	return UpdateUserPlan(ctx, s.DB, id, plan, now)
}

func (s *GormStore) IncrementUsage(ctx context.Context, id string, kind domain.UsageKind) error {
	return IncrementUsage(ctx, s.DB, id, kind)
}

// MemoryStore keeps everything in process memory behind one RWMutex. It has
// the same error semantics as GormStore (ErrNotFound, ErrDuplicate) and hands
// out copies, so callers cannot mutate stored rows.
type MemoryStore struct {
	mu      sync.RWMutex
	scripts map[string]domain.Script
	videos  map[string]domain.Video
	users   map[string]domain.User
	emails  map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scripts: make(map[string]domain.Script),
		videos:  make(map[string]domain.Video),
		users:   make(map[string]domain.User),
		emails:  make(map[string]string),
	}
}

func (m *MemoryStore) SaveScript(_ context.Context, sc *domain.Script) error {
	m.mu.Lock()
	m.scripts[sc.ID] = *sc
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetScript(_ context.Context, id string) (*domain.Script, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, ok := m.scripts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sc, nil
}

// scriptsNewestFirst returns the scripts matching keep, newest first.
// Callers hold at least the read lock.
func (m *MemoryStore) scriptsNewestFirst(keep func(domain.Script) bool) []domain.Script {
	out := make([]domain.Script, 0, len(m.scripts))
	for _, sc := range m.scripts {
		if keep(sc) {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryStore) ListScripts(_ context.Context, userID string, offset, limit int) ([]domain.Script, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.scriptsNewestFirst(func(sc domain.Script) bool { return sc.UserID == userID })
	return window(all, offset, limit), nil
}

func (m *MemoryStore) CountScripts(_ context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, sc := range m.scripts {
		if sc.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) RecentScripts(_ context.Context, limit int) ([]domain.Script, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.scriptsNewestFirst(func(domain.Script) bool { return true })
	return window(all, 0, limit), nil
}

func (m *MemoryStore) ScriptsStats(_ context.Context, userID string) (int64, *time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		n      int64
		newest time.Time
	)
	for _, sc := range m.scripts {
		if sc.UserID != userID {
			continue
		}
		n++
		if sc.CreatedAt.After(newest) {
			newest = sc.CreatedAt
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	return n, &newest, nil
}

func (m *MemoryStore) SaveVideo(_ context.Context, v *domain.Video) error {
	cp := *v
	cp.Segments = append([]domain.Segment(nil), v.Segments...)
	m.mu.Lock()
	m.videos[v.ID] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetVideo(_ context.Context, id string) (*domain.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	v.Segments = append([]domain.Segment(nil), v.Segments...)
	return &v, nil
}

func (m *MemoryStore) ListVideos(_ context.Context, userID string, offset, limit int) ([]domain.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Video, 0)
	for _, v := range m.videos {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, offset, limit), nil
}

func (m *MemoryStore) CreateUser(_ context.Context, u *domain.User) error {
	email := strings.ToLower(u.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.emails[email]; taken {
		return ErrDuplicate
	}
	if _, taken := m.users[u.ID]; taken {
		return ErrDuplicate
	}
	m.users[u.ID] = *u
	m.emails[email] = u.ID
	return nil
}

func (m *MemoryStore) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) CountUsers(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

func (m *MemoryStore) UpdateUserPlan(_ context.Context, id, plan string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Plan = plan
	u.UpdatedAt = now
	m.users[id] = u
	return nil
}

func (m *MemoryStore) IncrementUsage(_ context.Context, id string, kind domain.UsageKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	switch kind {
	case domain.UsageScriptGeneration:
		u.Usage.ScriptsGenerated++
	case domain.UsageVideoCreation:
		u.Usage.VideosCreated++
	case domain.UsageAPICall:
		u.Usage.APICallsMade++
	}
	m.users[id] = u
	return nil
}

// window applies offset/limit to an already ordered slice.
func window[T any](in []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []T{}
	}
	end := len(in)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return in[offset:end]
}
