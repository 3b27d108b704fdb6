package cli

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/client/client"
)

// watcher remembers the keys seen by the previous poll.
type watcher struct {
	api     client.API
	timeout time.Duration
	known   map[string]struct{}
	seeded  bool
}

func newWatcher(api client.API, timeout time.Duration) *watcher {
	return &watcher{api: api, timeout: timeout, known: map[string]struct{}{}}
}

// poll lists the store and returns the keys added and removed since the
// last successful poll, sorted. The first successful poll only seeds.
func (w *watcher) poll(ctx context.Context) (added, removed []string, err error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	list, err := w.api.List(ctx, "")
	if err != nil {
		return nil, nil, err
	}

	current := make(map[string]struct{}, len(list))
	for _, o := range list {
		current[o.Key] = struct{}{}
		if _, ok := w.known[o.Key]; !ok && w.seeded {
			added = append(added, o.Key)
		}
	}
	if w.seeded {
		for k := range w.known {
			if _, ok := current[k]; !ok {
				removed = append(removed, k)
			}
		}
	}

	w.known = current
	w.seeded = true

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed, nil
}
