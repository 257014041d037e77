// Package locker provides named mutual exclusion used to serialize position
// rewrites on one container (a board's lists or a list's tasks).
package locker

import (
	"context"
	"errors"
	"sort"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Unlock releases a lock obtained from a Locker. It is safe to call once.
type Unlock func()

type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// LockAll acquires every distinct key in lexical order so two callers that
// need overlapping sets cannot deadlock. On failure, keys already held are
// released before returning.
func LockAll(ctx context.Context, l Locker, keys ...string) (Unlock, error) {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	sort.Strings(uniq)

	held := make([]Unlock, 0, len(uniq))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}

	for _, k := range uniq {
		unlock, err := l.Lock(ctx, k)
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, unlock)
	}

	return release, nil
}
