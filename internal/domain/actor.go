package domain

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Actor is a user as the identity service reports it.
type Actor struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Role     Role   `json:"role,omitempty"`
}

// Requester is the authenticated caller of one request.
type Requester struct {
	Actor Actor
	Token string
}

// WithRequester attaches the requester to ctx.
func WithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, RequesterCtxKey, r)
}

// RequesterFrom returns the requester of ctx, or false for anonymous requests.
func RequesterFrom(ctx context.Context) (Requester, bool) {
	r, ok := ctx.Value(RequesterCtxKey).(Requester)
	if !ok || r.Actor.ID == "" {
		return Requester{}, false
	}
	return r, true
}

// OwnerMemo holds the users resolved during a single request. Concurrent
// lookups of the same id share one fetch.
type OwnerMemo struct {
	mu     sync.Mutex
	actors map[string]Actor
	group  singleflight.Group
}

func NewOwnerMemo() *OwnerMemo {
	return &OwnerMemo{actors: make(map[string]Actor)}
}

func (m *OwnerMemo) Get(id string) (Actor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actors[id]
	return a, ok
}

func (m *OwnerMemo) Put(a Actor) {
	if a.ID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actors[a.ID] = a
}

// Resolve returns the memoised actor for id, calling fetch at most once at a time.
// Failures are not memoised.
func (m *OwnerMemo) Resolve(id string, fetch func() (Actor, error)) (Actor, error) {
	if a, ok := m.Get(id); ok {
		return a, nil
	}
	v, err, _ := m.group.Do(id, func() (any, error) {
		if a, ok := m.Get(id); ok {
			return a, nil
		}
		a, err := fetch()
		if err != nil {
			return Actor{}, err
		}
		m.Put(a)
		return a, nil
	})
	if err != nil {
		return Actor{}, err
	}
	return v.(Actor), nil
}

// WithOwnerMemo attaches a fresh per-request memo to ctx.
func WithOwnerMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, OwnerMemoCtxKey, NewOwnerMemo())
}

// OwnerMemoFrom returns the memo of ctx, or nil when the request has none.
func OwnerMemoFrom(ctx context.Context) *OwnerMemo {
	m, _ := ctx.Value(OwnerMemoCtxKey).(*OwnerMemo)
	return m
}
