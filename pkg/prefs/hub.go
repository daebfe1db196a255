package prefs

import "sync"

// subscriberBuffer bounds how many changes a slow subscriber may lag behind
// before further changes are dropped for it.
const subscriberBuffer = 32

// Change is a successful write, broadcast to the user's other sessions.
type Change struct {
	User          string         `json:"user"`
	Preferences   map[string]any `json:"preferences"`
	Version       int64          `json:"version"`
	OriginSession string         `json:"origin_session,omitempty"`
}

type subscriber struct {
	session string
	ch      chan Change
}

// Hub fans preference changes out to subscribed sessions. Each subscriber
// only sees changes for its own user and never the ones its session made.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers session for changes to user's preferences. The
// returned cancel func unsubscribes and closes the channel; it is safe to
// call more than once.
func (h *Hub) Subscribe(user, session string) (<-chan Change, func()) {
	sub := &subscriber{session: session, ch: make(chan Change, subscriberBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	if h.subs[user] == nil {
		h.subs[user] = make(map[*subscriber]struct{})
	}
	h.subs[user][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[user][sub]; !ok {
				return
			}
			delete(h.subs[user], sub)
			if len(h.subs[user]) == 0 {
				delete(h.subs, user)
			}
			close(sub.ch)
		})
	}
}

// Publish delivers c to every subscriber of c.User except the origin
// session. It never blocks; a full subscriber misses the change. It returns
// how many subscribers received it.
func (h *Hub) Publish(c Change) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for sub := range h.subs[c.User] {
		if c.OriginSession != "" && sub.session == c.OriginSession {
			continue
		}
		out := c
		out.Preferences = Clone(c.Preferences)
		select {
		case sub.ch <- out:
			sent++
		default:
		}
	}
	return sent
}

// Subscribers returns the number of live subscriptions for user.
func (h *Hub) Subscribers(user string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[user])
}

// Close closes every subscriber channel. Later subscriptions receive a
// closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for user, subs := range h.subs {
		for sub := range subs {
			close(sub.ch)
		}
		delete(h.subs, user)
	}
}
