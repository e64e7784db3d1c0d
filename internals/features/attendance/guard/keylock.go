// Package guard menyediakan lock eksklusif per key (person, day) dengan waktu
// tunggu terbatas. Key berbeda tidak saling menunggu.
package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"absensi_backend/internals/features/attendance/model"
)

// Key untuk (person, day). Presence & excuse memakai key yang sama supaya
// aturan "presence memblokir excuse" tidak bisa balapan.
func Key(personID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s/%s", personID, day.Format("2006-01-02"))
}

type entry struct {
	sem  chan struct{}
	refs int
}

type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout time.Duration
}

// NewKeyLock: timeout <= 0 berarti hanya dibatasi ctx.
func NewKeyLock(timeout time.Duration) *KeyLock {
	return &KeyLock{
		entries: make(map[string]*entry),
		timeout: timeout,
	}
}

// Acquire menunggu sampai key bebas, ctx selesai, atau timeout.
// Gagal → model.ErrConcurrencyTimeout (caller boleh retry).
func (l *KeyLock) Acquire(ctx context.Context, key string) (release func(), err error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	var timer <-chan time.Time
	if l.timeout > 0 {
		t := time.NewTimer(l.timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, e)
		return nil, fmt.Errorf("%w: %v", model.ErrConcurrencyTimeout, ctx.Err())
	case <-timer:
		l.drop(key, e)
		return nil, model.ErrConcurrencyTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.drop(key, e)
		})
	}, nil
}

func (l *KeyLock) drop(key string, e *entry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()
}

// Len: jumlah key yang sedang dipegang/ditunggu (untuk test & metrics).
func (l *KeyLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
