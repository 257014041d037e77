// Package reorder keeps the positions inside a container (a board's lists or
// a list's tasks) dense and zero-based across inserts, moves and deletes.
//
// Every operation holds the container lock(s) for the whole
// read-plan-write cycle and persists its changes in a single transaction, so
// a failure never leaves a partially renumbered container behind.
package reorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/boardwalk-dev/boardwalk/internal/locker"
	"go.uber.org/zap"
)

var ErrSourceMismatch = errors.New("item is not in the expected source container")

// errContainerChanged is returned from inside a transaction when the item
// moved between the unlocked lookup and lock acquisition.
var errContainerChanged = errors.New("item changed container while waiting for lock")

const maxAttempts = 3

// Tx is the transactional view of one kind of positioned item.
type Tx interface {
	Get(ctx context.Context, id string) (Item, error)
	// Items returns the container's items ordered by position.
	Items(ctx context.Context, containerID string) ([]Item, error)
	// Tail returns max(position)+1, or 0 for an empty container.
	Tail(ctx context.Context, containerID string) (int, error)
	SetPosition(ctx context.Context, u Update) error
	Delete(ctx context.Context, id string) error
}

type Repository[T Tx] interface {
	// Find reads an item outside of any transaction.
	Find(ctx context.Context, id string) (Item, error)
	Transaction(ctx context.Context, fn func(tx T) error) error
}

type Move struct {
	ItemID string
	Index  int
	// SourceID is optional; when set it must match the item's container.
	SourceID string
	// DestinationID defaults to the item's current container.
	DestinationID string
}

type Result struct {
	Item          Item
	DestinationID string
	Destination   []Item
	SourceID      string
	Source        []Item
}

func (r Result) CrossContainer() bool {
	return r.SourceID != "" && r.SourceID != r.DestinationID
}

type Service[T Tx] struct {
	kind   string
	repo   Repository[T]
	locker locker.Locker
}

// NewService returns a service for one item kind. kind namespaces the lock
// keys, e.g. "list" for tasks grouped by list.
func NewService[T Tx](kind string, repo Repository[T], l locker.Locker) *Service[T] {
	return &Service[T]{kind: kind, repo: repo, locker: l}
}

func (s *Service[T]) lockKey(containerID string) string {
	return s.kind + ":" + containerID
}

// Move relocates an item to m.Index inside m.DestinationID and renumbers the
// destination and, for cross-container moves, the source container.
func (s *Service[T]) Move(ctx context.Context, m Move) (Result, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		current, err := s.repo.Find(ctx, m.ItemID)
		if err != nil {
			return Result{}, err
		}

		if m.SourceID != "" && m.SourceID != current.ContainerID {
			return Result{}, ErrSourceMismatch
		}

		destinationID := m.DestinationID
		if destinationID == "" {
			destinationID = current.ContainerID
		}

		result, err := s.move(ctx, m.ItemID, m.Index, current.ContainerID, destinationID)
		if errors.Is(err, errContainerChanged) {
			zap.L().Debug("retrying move after concurrent container change",
				zap.String("kind", s.kind), zap.String("item_id", m.ItemID), zap.Int("attempt", attempt+1))
			continue
		}
		return result, err
	}

	return Result{}, fmt.Errorf("move %s: %w", m.ItemID, errContainerChanged)
}

func (s *Service[T]) move(ctx context.Context, itemID string, index int, sourceID, destinationID string) (Result, error) {
	unlock, err := locker.LockAll(ctx, s.locker, s.lockKey(sourceID), s.lockKey(destinationID))
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	var result Result

	err = s.repo.Transaction(ctx, func(tx T) error {
		item, err := tx.Get(ctx, itemID)
		if err != nil {
			return err
		}
		if item.ContainerID != sourceID {
			return errContainerChanged
		}

		destination, err := tx.Items(ctx, destinationID)
		if err != nil {
			return err
		}

		var source []Item
		if sourceID != destinationID {
			if source, err = tx.Items(ctx, sourceID); err != nil {
				return err
			}
		}

		plan := PlanMove(item, index, destinationID, destination, source)
		if err := apply(ctx, tx, plan.Updates); err != nil {
			return err
		}

		result = Result{
			DestinationID: destinationID,
			Destination:   plan.Destination,
			SourceID:      sourceID,
			Source:        plan.Source,
		}
		for _, it := range plan.Destination {
			if it.ID == itemID {
				result.Item = it
				break
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

// Append runs insert with the container's tail position inside one
// transaction and returns the position used.
func (s *Service[T]) Append(ctx context.Context, containerID string, insert func(tx T, position int) error) (int, error) {
	unlock, err := s.locker.Lock(ctx, s.lockKey(containerID))
	if err != nil {
		return 0, err
	}
	defer unlock()

	var position int
	err = s.repo.Transaction(ctx, func(tx T) error {
		tail, err := tx.Tail(ctx, containerID)
		if err != nil {
			return err
		}
		position = tail
		return insert(tx, tail)
	})
	if err != nil {
		return 0, err
	}

	return position, nil
}

// Remove deletes an item and closes the gap it leaves in its container.
// It returns the container id and its refreshed sequence.
func (s *Service[T]) Remove(ctx context.Context, itemID string) (string, []Item, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		current, err := s.repo.Find(ctx, itemID)
		if err != nil {
			return "", nil, err
		}

		items, err := s.remove(ctx, itemID, current.ContainerID)
		if errors.Is(err, errContainerChanged) {
			continue
		}
		return current.ContainerID, items, err
	}

	return "", nil, fmt.Errorf("remove %s: %w", itemID, errContainerChanged)
}

func (s *Service[T]) remove(ctx context.Context, itemID, containerID string) ([]Item, error) {
	unlock, err := s.locker.Lock(ctx, s.lockKey(containerID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var items []Item
	err = s.repo.Transaction(ctx, func(tx T) error {
		item, err := tx.Get(ctx, itemID)
		if err != nil {
			return err
		}
		if item.ContainerID != containerID {
			return errContainerChanged
		}

		if err := tx.Delete(ctx, itemID); err != nil {
			return err
		}

		remaining, err := tx.Items(ctx, containerID)
		if err != nil {
			return err
		}

		plan := PlanCompact(containerID, remaining)
		items = plan.Destination
		return apply(ctx, tx, plan.Updates)
	})

	return items, err
}

// Compact renumbers a container 0..n-1 keeping its current order.
func (s *Service[T]) Compact(ctx context.Context, containerID string) ([]Item, error) {
	unlock, err := s.locker.Lock(ctx, s.lockKey(containerID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var items []Item
	err = s.repo.Transaction(ctx, func(tx T) error {
		current, err := tx.Items(ctx, containerID)
		if err != nil {
			return err
		}

		plan := PlanCompact(containerID, current)
		items = plan.Destination
		return apply(ctx, tx, plan.Updates)
	})

	return items, err
}

func apply[T Tx](ctx context.Context, tx T, updates []Update) error {
	for _, u := range updates {
		if err := tx.SetPosition(ctx, u); err != nil {
			return fmt.Errorf("set position of %s: %w", u.ID, err)
		}
	}
	return nil
}
