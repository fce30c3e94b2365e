package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dinerozz/orgs-console/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitIsApplied(t *testing.T) {
	store := NewStore()
	defer store.Close()

	store.Commit(func(st State) State {
		st.Browse = st.Browse.Load()
		return st
	})
	assert.Equal(t, "LOADING", store.Snapshot().Browse.State().String())
}

func TestConcurrentCommitsAreSerialized(t *testing.T) {
	store := NewStore()
	defer store.Close()

	store.Commit(func(st State) State {
		st.Browse = st.Browse.Succeed(nil)
		return st
	})

	// Every goroutine appends exactly one group. If two mutations ever ran
	// against the same base state an append would be lost.
	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Commit(func(st State) State {
				orgs, _ := st.Browse.Value()
				orgs = append(orgs, entity.Group{ID: fmt.Sprintf("g%d", i)})
				st.Browse = st.Browse.Succeed(orgs)
				return st
			})
		}(i)
	}
	wg.Wait()

	orgs, ok := store.Snapshot().Browse.Value()
	require.True(t, ok)
	assert.Len(t, orgs, n)
}

func TestCommitsApplyInCompletionOrder(t *testing.T) {
	store := NewStore()
	defer store.Close()

	// Two loads of the same view resolving out of dispatch order: the one
	// committing last wins, even if it was dispatched first.
	store.Commit(func(st State) State {
		st.Org = st.Org.Succeed(OrgDetail{Group: &entity.Group{ID: "newer"}})
		return st
	})
	store.Commit(func(st State) State {
		st.Org = st.Org.Succeed(OrgDetail{Group: &entity.Group{ID: "slow-and-stale"}})
		return st
	})

	detail, ok := store.Snapshot().Org.Value()
	require.True(t, ok)
	assert.Equal(t, "slow-and-stale", detail.Group.ID)
}

func TestSnapshotDuringCommits(t *testing.T) {
	store := NewStore()
	defer store.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			store.Commit(func(st State) State {
				st.Requests = st.Requests.Load()
				return st
			})
		}
	}()
	for i := 0; i < 50; i++ {
		_ = store.Snapshot()
	}
	<-done
}

func TestReplaceRequestTouchesOnlyTarget(t *testing.T) {
	requests := []entity.Request{
		{ID: "a", Status: entity.StatusOpen},
		{ID: "b", Status: entity.StatusOpen},
		{ID: "c", Status: entity.StatusOpen},
	}

	next := replaceRequest(requests, entity.Request{ID: "b", Status: entity.StatusAccepted})

	assert.Equal(t, entity.StatusAccepted, next[1].Status)
	assert.Equal(t, entity.StatusOpen, next[0].Status)
	assert.Equal(t, entity.StatusOpen, next[2].Status)
	assert.Equal(t, entity.StatusOpen, requests[1].Status, "the input slice is not mutated")
}
