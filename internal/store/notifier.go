package store

import (
	"context"
	"log"
	"strings"
	"sync"
)

// Notifier fans out change signals by store path. A change at a/b/c is signalled to
// subscribers of a/b/c, a/b and a. Signals coalesce: a subscriber that has not yet
// consumed a signal simply has one pending, which is all a full-snapshot reader needs.
type Notifier struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in path. The returned cancel func must be called to
// release the subscription.
func (n *Notifier) Subscribe(path string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	path = strings.Trim(path, "/")

	n.mu.Lock()
	if n.subs[path] == nil {
		n.subs[path] = make(map[chan struct{}]struct{})
	}
	n.subs[path][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[path], ch)
			if len(n.subs[path]) == 0 {
				delete(n.subs, path)
			}
			n.mu.Unlock()
		})
	}
}

// Publish signals a change at path and every ancestor of it.
func (n *Notifier) Publish(path string) {
	path = strings.Trim(path, "/")
	n.mu.Lock()
	defer n.mu.Unlock()
	for p := path; ; {
		for ch := range n.subs[p] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
		i := strings.LastIndex(p, "/")
		if i < 0 {
			return
		}
		p = p[:i]
	}
}

// Watch streams snapshots of path. The current value is loaded and sent first, then a
// fresh full snapshot after every change. The channel closes when ctx is done.
// A failed load is logged and retried on the next change.
func Watch[T any](ctx context.Context, n *Notifier, path string, load func(context.Context) (T, error)) <-chan T {
	out := make(chan T)
	changed, cancel := n.Subscribe(path)

	go func() {
		defer close(out)
		defer cancel()
		for {
			v, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("store: snapshot of %s failed: %v", path, err)
			} else {
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
