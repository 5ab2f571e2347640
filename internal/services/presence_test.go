package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresence_RegisterReportsFirstConnectionOnly(t *testing.T) {
	reg := NewPresenceRegistry()

	assert.True(t, reg.Register("alice", "c1"))
	assert.False(t, reg.Register("alice", "c2"))
	assert.True(t, reg.IsOnline("alice"))
	assert.ElementsMatch(t, []string{"c1", "c2"}, reg.ConnectionsFor("alice"))
}

func TestPresence_UnregisterReportsLastConnectionOnly(t *testing.T) {
	reg := NewPresenceRegistry()
	reg.Register("alice", "c1")
	reg.Register("alice", "c2")

	user, last := reg.Unregister("c1")
	assert.Equal(t, "alice", user)
	assert.False(t, last)
	assert.True(t, reg.IsOnline("alice"))

	user, last = reg.Unregister("c2")
	assert.Equal(t, "alice", user)
	assert.True(t, last)
	assert.False(t, reg.IsOnline("alice"))
	assert.Empty(t, reg.ConnectionsFor("alice"))
}

func TestPresence_UnknownConnectionIsNoop(t *testing.T) {
	reg := NewPresenceRegistry()

	user, last := reg.Unregister("ghost")
	assert.Equal(t, "", user)
	assert.False(t, last)
}

func TestPresence_ConcurrentLifecycleSingleTransitions(t *testing.T) {
	const n = 50
	reg := NewPresenceRegistry()

	var wg sync.WaitGroup
	var mu sync.Mutex
	onlineTransitions := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if reg.Register("alice", fmt.Sprintf("conn-%d", i)) {
				mu.Lock()
				onlineTransitions++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, onlineTransitions)
	assert.True(t, reg.IsOnline("alice"))
	assert.Len(t, reg.ConnectionsFor("alice"), n)

	offlineTransitions := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, last := reg.Unregister(fmt.Sprintf("conn-%d", i)); last {
				mu.Lock()
				offlineTransitions++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, offlineTransitions)
	assert.False(t, reg.IsOnline("alice"))
	assert.NotContains(t, reg.OnlineUsers(), "alice")
}

func TestPresence_OnlineUsersSnapshot(t *testing.T) {
	reg := NewPresenceRegistry()
	reg.Register("alice", "c1")
	reg.Register("bob", "c2")

	assert.ElementsMatch(t, []string{"alice", "bob"}, reg.OnlineUsers())
	assert.False(t, reg.IsOnline("carol"))
}
