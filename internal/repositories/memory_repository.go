package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/Gopher0727/GuildForge/internal/models"
)

// NewMemoryStore 进程内存储，用于本地开发和测试，重启即丢失
func NewMemoryStore() *Store {
	return &Store{
		Templates:    &MemoryTemplateRepository{byID: make(map[string]models.Template)},
		CreationLogs: &MemoryCreationLogRepository{},
		StatusChecks: &MemoryStatusCheckRepository{},
	}
}

type MemoryTemplateRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]models.Template
}

func (r *MemoryTemplateRepository) Create(_ context.Context, template *models.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[template.ID]; !exists {
		r.order = append(r.order, template.ID)
	}
	r.byID[template.ID] = cloneTemplate(*template)
	return nil
}

func (r *MemoryTemplateRepository) List(_ context.Context, limit int) ([]models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]models.Template, 0, min(limit, len(r.order)))
	for _, id := range r.order {
		if len(templates) >= limit {
			break
		}
		templates = append(templates, cloneTemplate(r.byID[id]))
	}
	return templates, nil
}

func (r *MemoryTemplateRepository) Get(_ context.Context, id string) (*models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	template, ok := r.byID[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	clone := cloneTemplate(template)
	return &clone, nil
}

func (r *MemoryTemplateRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrTemplateNotFound
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// cloneTemplate 深拷贝，防止调用方修改已存储的频道/角色列表
func cloneTemplate(t models.Template) models.Template {
	data, err := json.Marshal(t)
	if err != nil {
		return t
	}
	var clone models.Template
	if err := json.Unmarshal(data, &clone); err != nil {
		return t
	}
	clone.CreatedAt = t.CreatedAt
	return clone
}

type MemoryCreationLogRepository struct {
	mu   sync.RWMutex
	logs []models.CreationLog
}

func (r *MemoryCreationLogRepository) Create(_ context.Context, log *models.CreationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logs = append(r.logs, *log)
	return nil
}

func (r *MemoryCreationLogRepository) ListRecent(_ context.Context, limit int) ([]models.CreationLog, error) {
	// 按插入顺序倒序复制，CreatedAt 相同时后写入的排在前面
	r.mu.RLock()
	logs := make([]models.CreationLog, len(r.logs))
	for i, log := range r.logs {
		logs[len(r.logs)-1-i] = log
	}
	r.mu.RUnlock()

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

type MemoryStatusCheckRepository struct {
	mu     sync.RWMutex
	checks []models.StatusCheck
}

func (r *MemoryStatusCheckRepository) Create(_ context.Context, check *models.StatusCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checks = append(r.checks, *check)
	return nil
}

func (r *MemoryStatusCheckRepository) List(_ context.Context, limit int) ([]models.StatusCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := min(limit, len(r.checks))
	checks := make([]models.StatusCheck, n)
	copy(checks, r.checks[:n])
	return checks, nil
}
