package reorder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/boardwalk-dev/boardwalk/internal/locker"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected write failure")

// memRepo keeps items in a map. A transaction works on a copy and only the
// rows it touched are written back when fn succeeds.
type memRepo struct {
	mu    sync.Mutex
	items map[string]Item

	// failOnWrite makes the n-th SetPosition overall fail (1-based).
	failOnWrite int
	writes      int
}

type memTx struct {
	repo    *memRepo
	items   map[string]Item
	touched map[string]struct{}
}

func newMemRepo(containers map[string][]string) *memRepo {
	r := &memRepo{items: make(map[string]Item)}
	for containerID, list := range containers {
		for i, id := range list {
			r.items[id] = Item{ID: id, ContainerID: containerID, Position: i}
		}
	}
	return r
}

func (r *memRepo) Find(_ context.Context, id string) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return Item{}, types.ErrNotFound
	}
	return it, nil
}

func (r *memRepo) Transaction(_ context.Context, fn func(tx *memTx) error) error {
	r.mu.Lock()
	snapshot := make(map[string]Item, len(r.items))
	for k, v := range r.items {
		snapshot[k] = v
	}
	r.mu.Unlock()

	tx := &memTx{repo: r, items: snapshot, touched: make(map[string]struct{})}
	if err := fn(tx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range tx.touched {
		if it, ok := tx.items[id]; ok {
			r.items[id] = it
		} else {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *memRepo) container(id string) []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sorted(r.items, id)
}

func sorted(all map[string]Item, containerID string) []Item {
	var out []Item
	for _, it := range all {
		if it.ContainerID == containerID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (tx *memTx) Get(_ context.Context, id string) (Item, error) {
	it, ok := tx.items[id]
	if !ok {
		return Item{}, types.ErrNotFound
	}
	return it, nil
}

func (tx *memTx) Items(_ context.Context, containerID string) ([]Item, error) {
	return sorted(tx.items, containerID), nil
}

func (tx *memTx) Tail(_ context.Context, containerID string) (int, error) {
	tail := 0
	for _, it := range tx.items {
		if it.ContainerID == containerID && it.Position+1 > tail {
			tail = it.Position + 1
		}
	}
	return tail, nil
}

func (tx *memTx) SetPosition(_ context.Context, u Update) error {
	tx.repo.mu.Lock()
	tx.repo.writes++
	fail := tx.repo.failOnWrite > 0 && tx.repo.writes == tx.repo.failOnWrite
	tx.repo.mu.Unlock()
	if fail {
		return errInjected
	}

	if _, ok := tx.items[u.ID]; !ok {
		return types.ErrNotFound
	}
	tx.put(Item{ID: u.ID, ContainerID: u.ContainerID, Position: u.Position})
	return nil
}

func (tx *memTx) Delete(_ context.Context, id string) error {
	if _, ok := tx.items[id]; !ok {
		return types.ErrNotFound
	}
	delete(tx.items, id)
	tx.touched[id] = struct{}{}
	return nil
}

func (tx *memTx) put(it Item) {
	tx.items[it.ID] = it
	tx.touched[it.ID] = struct{}{}
}

func newTestService(repo *memRepo) *Service[*memTx] {
	return NewService[*memTx]("list", repo, locker.NewLocal())
}

func TestService_MoveWithinContainer(t *testing.T) {
	repo := newMemRepo(map[string][]string{"A": {"t0", "t1", "t2", "t3"}})
	svc := newTestService(repo)

	res, err := svc.Move(context.Background(), Move{ItemID: "t0", Index: 2})
	require.NoError(t, err)

	assert.Equal(t, Item{ID: "t0", ContainerID: "A", Position: 2}, res.Item)
	assert.False(t, res.CrossContainer())
	assert.Nil(t, res.Source)
	assert.Equal(t, []string{"t1", "t2", "t0", "t3"}, ids(repo.container("A")))
	assert.True(t, IsDense(repo.container("A")))
}

func TestService_MoveAcrossContainers(t *testing.T) {
	repo := newMemRepo(map[string][]string{
		"A": {"a0", "x", "a2", "a3"},
		"B": {"b0", "b1"},
	})
	svc := newTestService(repo)

	res, err := svc.Move(context.Background(), Move{ItemID: "x", Index: 1, SourceID: "A", DestinationID: "B"})
	require.NoError(t, err)

	assert.True(t, res.CrossContainer())
	assert.Equal(t, "B", res.Item.ContainerID)
	assert.Equal(t, 1, res.Item.Position)

	a, b := repo.container("A"), repo.container("B")
	assert.Equal(t, []string{"a0", "a2", "a3"}, ids(a))
	assert.Equal(t, []string{"b0", "x", "b1"}, ids(b))
	assert.True(t, IsDense(a))
	assert.True(t, IsDense(b))
	assert.Equal(t, ids(b), ids(res.Destination))
	assert.Equal(t, ids(a), ids(res.Source))
}

func TestService_MoveToOwnIndexWritesNothing(t *testing.T) {
	repo := newMemRepo(map[string][]string{"A": {"t0", "t1", "t2"}})
	svc := newTestService(repo)

	res, err := svc.Move(context.Background(), Move{ItemID: "t1", Index: 1, DestinationID: "A"})
	require.NoError(t, err)

	assert.Zero(t, repo.writes)
	assert.Equal(t, []string{"t0", "t1", "t2"}, ids(res.Destination))
}

func TestService_MoveClampsBeyondTail(t *testing.T) {
	repo := newMemRepo(map[string][]string{"A": {"t0", "t1", "t2"}})
	svc := newTestService(repo)

	res, err := svc.Move(context.Background(), Move{ItemID: "t0", Index: 99})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Item.Position)
}

func TestService_MoveErrors(t *testing.T) {
	repo := newMemRepo(map[string][]string{"A": {"t0", "t1"}})
	svc := newTestService(repo)

	_, err := svc.Move(context.Background(), Move{ItemID: "missing", Index: 0})
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = svc.Move(context.Background(), Move{ItemID: "t0", Index: 1, SourceID: "B"})
	assert.ErrorIs(t, err, ErrSourceMismatch)
	assert.Equal(t, []string{"t0", "t1"}, ids(repo.container("A")))
}

func TestService_MoveIsAtomic(t *testing.T) {
	repo := newMemRepo(map[string][]string{
		"A": {"a0", "a1", "a2", "a3"},
		"B": {"b0", "b1", "b2"},
	})
	repo.failOnWrite = 3
	svc := newTestService(repo)

	beforeA, beforeB := repo.container("A"), repo.container("B")

	_, err := svc.Move(context.Background(), Move{ItemID: "a0", Index: 0, DestinationID: "B"})
	require.ErrorIs(t, err, errInjected)

	assert.Equal(t, beforeA, repo.container("A"))
	assert.Equal(t, beforeB, repo.container("B"))
}

func TestService_Append(t *testing.T) {
	repo := newMemRepo(map[string][]string{"A": {"t0", "t1", "t2"}})
	svc := newTestService(repo)

	pos, err := svc.Append(context.Background(), "A", func(tx *memTx, position int) error {
		tx.put(Item{ID: "t3", ContainerID: "A", Position: position})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, pos)
	assert.True(t, IsDense(repo.container("A")))

	pos, err = svc.Append(context.Background(), "empty", func(tx *memTx, position int) error {
		tx.put(Item{ID: "e0", ContainerID: "empty", Position: position})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	_, err = svc.Append(context.Background(), "A", func(*memTx, int) error { return errInjected })
	require.ErrorIs(t, err, errInjected)
	assert.Len(t, repo.container("A"), 4)
}

func TestService_RemoveCompacts(t *testing.T) {
	repo := newMemRepo(map[string][]string{"A": {"t0", "t1", "t2", "t3"}})
	svc := newTestService(repo)

	containerID, items, err := svc.Remove(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, "A", containerID)
	assert.Equal(t, []string{"t0", "t2", "t3"}, ids(items))
	assert.Equal(t, items, repo.container("A"))
	assert.True(t, IsDense(repo.container("A")))

	_, _, err = svc.Remove(context.Background(), "t1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestService_Compact(t *testing.T) {
	repo := newMemRepo(nil)
	repo.items["a"] = Item{ID: "a", ContainerID: "A", Position: 3}
	repo.items["b"] = Item{ID: "b", ContainerID: "A", Position: 7}
	repo.items["c"] = Item{ID: "c", ContainerID: "A", Position: 9}
	svc := newTestService(repo)

	items, err := svc.Compact(context.Background(), "A")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, ids(items))
	assert.True(t, IsDense(repo.container("A")))
}

func TestService_ConcurrentMovesStayDense(t *testing.T) {
	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("t%d", i)
	}
	repo := newMemRepo(map[string][]string{"A": names, "B": {"b0"}})
	svc := newTestService(repo)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := Move{ItemID: names[i%len(names)], Index: (i * 7) % 11}
			if i%5 == 0 {
				m.DestinationID = "B"
			} else if i%5 == 1 {
				m.DestinationID = "A"
			}
			_, err := svc.Move(context.Background(), m)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	a, b := repo.container("A"), repo.container("B")
	assert.True(t, IsDense(a), "A positions: %v", a)
	assert.True(t, IsDense(b), "B positions: %v", b)
	assert.Equal(t, 11, len(a)+len(b))
}
