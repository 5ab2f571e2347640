package services

import "sync"

// PresenceRegistry tracks which live connections belong to which user.
// State is process-local and rebuilt from zero on restart. Every mutation
// runs inside one critical section so concurrent connection lifecycles
// cannot observe a half-updated set.
type PresenceRegistry struct {
	mu     sync.RWMutex
	conns  map[string]map[string]struct{} // userId -> set of connIds
	owners map[string]string              // connId -> userId
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		conns:  make(map[string]map[string]struct{}),
		owners: make(map[string]string),
	}
}

// Register adds connID to userID's set and reports whether this was the
// user's first live connection (the online transition).
func (r *PresenceRegistry) Register(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		set = make(map[string]struct{})
		r.conns[userID] = set
	}
	set[connID] = struct{}{}
	r.owners[connID] = userID

	return !ok
}

// Unregister removes connID from whichever user owns it. It returns the
// owning user and whether that user just went offline. Unknown connection
// IDs are a no-op.
func (r *PresenceRegistry) Unregister(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[connID]
	if !ok {
		return "", false
	}
	delete(r.owners, connID)

	set := r.conns[userID]
	delete(set, connID)
	if len(set) == 0 {
		delete(r.conns, userID)
		return userID, true
	}
	return userID, false
}

// IsOnline reports whether the user has at least one live connection.
func (r *PresenceRegistry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}

// ConnectionsFor returns a snapshot of the user's live connection IDs.
func (r *PresenceRegistry) ConnectionsFor(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.conns[userID]))
	for id := range r.conns[userID] {
		ids = append(ids, id)
	}
	return ids
}

// OnlineUsers returns a snapshot of all users with live connections.
func (r *PresenceRegistry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.conns))
	for userID := range r.conns {
		users = append(users, userID)
	}
	return users
}
