package denylist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPruneSchedule расписание очистки истёкших записей.
const DefaultPruneSchedule = "@every 1m"

// Memory denylist в памяти процесса.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
	cron    *cron.Cron
	log     *slog.Logger
}

// NewMemory создаёт пустой denylist. Очистка запускается через Start.
func NewMemory(log *slog.Logger) *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
		cron:    cron.New(),
		log:     log,
	}
}

// Revoke добавляет токен до момента expiresAt. Уже истёкший токен не сохраняется.
func (m *Memory) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(m.now()) {
		return nil
	}
	m.mu.Lock()
	m.entries[digest(token)] = expiresAt
	m.mu.Unlock()
	return nil
}

// IsRevoked сообщает, отозван ли токен и не истёк ли срок записи.
func (m *Memory) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	exp, ok := m.entries[digest(token)]
	m.mu.RUnlock()
	return ok && m.now().Before(exp), nil
}

// Prune удаляет истёкшие записи и возвращает их количество.
func (m *Memory) Prune() int {
	now := m.now()
	removed := 0
	m.mu.Lock()
	for k, exp := range m.entries {
		if !now.Before(exp) {
			delete(m.entries, k)
			removed++
		}
	}
	m.mu.Unlock()
	return removed
}

// Len число записей, включая ещё не очищенные истёкшие.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Start запускает периодическую очистку по cron-расписанию.
func (m *Memory) Start(schedule string) error {
	const op = "denylist.Memory.Start"
	_, err := m.cron.AddFunc(schedule, func() {
		if n := m.Prune(); n > 0 {
			m.log.Debug("denylist pruned", slog.Int("removed", n))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m.cron.Start()
	return nil
}

// Stop останавливает очистку и ждёт завершения текущего запуска.
func (m *Memory) Stop() {
	<-m.cron.Stop().Done()
}
