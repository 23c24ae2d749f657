package presence

import (
	"context"
	"sync"
)

// Tracker counts open sockets per user. A user is online while the count is positive.
type Tracker interface {
	// Connect reports whether this was the user's first socket.
	Connect(ctx context.Context, userID int) (bool, error)
	// Disconnect reports whether this was the user's last socket.
	Disconnect(ctx context.Context, userID int) (bool, error)
	Online(ctx context.Context, userIDs []int) (map[int]bool, error)
}

type Memory struct {
	mu     sync.Mutex
	counts map[int]int
}

var _ Tracker = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{counts: make(map[int]int)}
}

func (m *Memory) Connect(_ context.Context, userID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[userID]++
	return m.counts[userID] == 1, nil
}

func (m *Memory) Disconnect(_ context.Context, userID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.counts[userID]
	if !ok {
		return false, nil
	}
	if n <= 1 {
		delete(m.counts, userID)
		return true, nil
	}
	m.counts[userID] = n - 1
	return false, nil
}

func (m *Memory) Online(_ context.Context, userIDs []int) (map[int]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]bool, len(userIDs))
	for _, id := range userIDs {
		out[id] = m.counts[id] > 0
	}
	return out, nil
}
