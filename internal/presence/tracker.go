package presence

import "sync"

// Tracker keeps counts of live connections per user.
type Tracker struct {
	mu     sync.RWMutex
	online map[string]int
}

func NewTracker() *Tracker {
	return &Tracker{online: make(map[string]int)}
}

func (t *Tracker) Increment(userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.online[userID]++
	return t.online[userID]
}

func (t *Tracker) Decrement(userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count, ok := t.online[userID]
	if !ok {
		return 0
	}
	if count <= 1 {
		delete(t.online, userID)
		return 0
	}
	t.online[userID] = count - 1
	return count - 1
}

func (t *Tracker) Online(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.online[userID] > 0
}

// OnlineCount reports how many of userIDs have at least one live connection.
func (t *Tracker) OnlineCount(userIDs []string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, id := range userIDs {
		if t.online[id] > 0 {
			n++
		}
	}
	return n
}

// ActiveUsers is the number of distinct users currently connected.
func (t *Tracker) ActiveUsers() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.online)
}
