package ratelimit

import (
	"context"
	"sync"
	"time"
)

type hit struct {
	id uint64
	at time.Time
}

// MemoryLimiter 是单进程内的滑动窗口限流器
type MemoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	seq    uint64
	hits   map[string][]hit
}

func NewMemoryLimiter(window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{window: window, hits: make(map[string][]hit)}
}

func (l *MemoryLimiter) Hit(ctx context.Context, ip string, at time.Time) (int64, *Reservation, error) {
	if err := validateIP(ip); err != nil {
		return 0, nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	boundary := at.Add(-l.window)
	kept := l.hits[ip][:0]
	for _, h := range l.hits[ip] {
		if !h.at.Before(boundary) {
			kept = append(kept, h)
		}
	}
	l.seq++
	id := l.seq
	kept = append(kept, hit{id: id, at: at})
	l.hits[ip] = kept

	return int64(len(kept)), &Reservation{rollback: func() { l.remove(ip, id) }}, nil
}

func (l *MemoryLimiter) remove(ip string, id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	hits := l.hits[ip]
	for i, h := range hits {
		if h.id == id {
			l.hits[ip] = append(hits[:i], hits[i+1:]...)
			return
		}
	}
}
