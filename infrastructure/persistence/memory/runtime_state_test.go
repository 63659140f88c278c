package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simstudio-backend/domain/core/aggregates"
	"simstudio-backend/domain/core/entities"
	"simstudio-backend/domain/core/valueobjects"
)

func collectionNamed(name string) *aggregates.GraphCollection {
	return aggregates.NewGraphCollection([]aggregates.Tab{
		{Name: name, Graph: aggregates.Graph{Nodes: []entities.Node{
			{ID: valueobjects.NodeID(name + "-node"), Kind: entities.NodeKindInfra, Resource: &entities.ResourceData{}},
		}}},
	})
}

func TestRuntimeStateStoreEmpty(t *testing.T) {
	store := NewRuntimeStateStore()
	assert.Nil(t, store.Current())
}

func TestRuntimeStateStoreInstallReplacesWholesale(t *testing.T) {
	store := NewRuntimeStateStore()

	first := store.Install(collectionNamed("first"))
	assert.Equal(t, []string{"first"}, first.Collection.TabNames())
	assert.False(t, first.UpdatedAt.IsZero())

	second := store.Install(collectionNamed("second"))
	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, []string{"second"}, current.Collection.TabNames())
	assert.Equal(t, second.UpdatedAt, current.UpdatedAt)
}

func TestRuntimeStateStoreReadersKeepTheirSnapshot(t *testing.T) {
	store := NewRuntimeStateStore()
	store.Install(collectionNamed("old"))

	held := store.Current()
	store.Install(collectionNamed("new"))

	// the pre-swap pointer still describes the old deployment in full
	assert.Equal(t, []string{"old"}, held.Collection.TabNames())
	assert.Equal(t, []string{"new"}, store.Current().Collection.TabNames())
}

func TestRuntimeStateStoreConcurrentAccess(t *testing.T) {
	store := NewRuntimeStateStore()
	store.Install(collectionNamed("seed"))

	var wg sync.WaitGroup
	stop := time.After(50 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				store.Install(collectionNamed("deploy"))
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deadline := time.Now().Add(50 * time.Millisecond)
			for time.Now().Before(deadline) {
				snapshot := store.Current()
				if !assert.NotNil(t, snapshot) {
					return
				}
				// a snapshot is always complete: collection and stamp together
				assert.NotNil(t, snapshot.Collection)
				assert.Equal(t, 1, snapshot.Collection.NodeCount())
				assert.False(t, snapshot.UpdatedAt.IsZero())
			}
		}()
	}

	wg.Wait()
}
