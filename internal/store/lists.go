package store

import (
	"context"

	"github.com/boardwalk-dev/boardwalk/internal/locker"
	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/reorder"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListStore struct {
	db      *gorm.DB
	boards  *BoardStore
	reorder *reorder.Service[*listTx]
	locker  locker.Locker
}

// Create appends a list at the tail of the board.
func (s *ListStore) Create(ctx context.Context, ownerID, boardID, title string) (*models.List, error) {
	if err := s.boards.Authorize(ctx, boardID, ownerID); err != nil {
		return nil, err
	}

	list := models.List{Title: title, BoardID: boardID}
	_, err := s.reorder.Append(ctx, boardID, func(tx *listTx, position int) error {
		if err := mustExist(ctx, tx.db, &models.Board{}, boardID); err != nil {
			return err
		}
		list.Position = position
		return tx.db.WithContext(ctx).Omit(clause.Associations).Create(&list).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	list.Tasks = []models.Task{}
	return &list, nil
}

func (s *ListStore) load(ctx context.Context, id string) (*models.List, error) {
	var list models.List
	err := s.db.WithContext(ctx).
		Preload("Tasks", orderedByPosition).
		Preload("Tasks.AssignedTo").
		Where("id = ?", id).
		First(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return &list, nil
}

// Get returns the list with its tasks after checking board ownership.
func (s *ListStore) Get(ctx context.Context, id, ownerID string) (*models.List, error) {
	list, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.boards.Authorize(ctx, list.BoardID, ownerID); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ListStore) ListByBoard(ctx context.Context, boardID, ownerID string) ([]models.List, error) {
	if err := s.boards.Authorize(ctx, boardID, ownerID); err != nil {
		return nil, err
	}

	var lists []models.List
	err := s.db.WithContext(ctx).
		Preload("Tasks", orderedByPosition).
		Preload("Tasks.AssignedTo").
		Where("board_id = ?", boardID).
		Order(positionOrder).
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (s *ListStore) Update(ctx context.Context, id, ownerID, title string) (*models.List, error) {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Model(&models.List{}).Where("id = ?", id).Update("title", title).Error
	if err != nil {
		return nil, err
	}

	return s.load(ctx, id)
}

// Move repositions a list inside its board or, when boardID names another
// board owned by the same user, into that board. It returns the moved list
// and the ids of every board whose order changed.
func (s *ListStore) Move(ctx context.Context, id, ownerID string, index int, boardID string) (*models.List, []string, error) {
	list, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, nil, err
	}

	if boardID == "" {
		boardID = list.BoardID
	}
	if boardID != list.BoardID {
		if err := s.boards.Authorize(ctx, boardID, ownerID); err != nil {
			return nil, nil, err
		}
	}

	res, err := s.reorder.Move(ctx, reorder.Move{
		ItemID:        id,
		Index:         index,
		SourceID:      list.BoardID,
		DestinationID: boardID,
	})
	if err != nil {
		return nil, nil, err
	}

	moved, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	affected := []string{res.DestinationID}
	if res.CrossContainer() {
		affected = append(affected, res.SourceID)
	}
	return moved, affected, nil
}

// Delete removes the list and its tasks and closes the gap in the board.
// It returns the board the list belonged to.
func (s *ListStore) Delete(ctx context.Context, id, ownerID string) (string, error) {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return "", err
	}

	// Keep task moves out of the list while it is being removed.
	unlock, err := s.locker.Lock(ctx, kindList+":"+id)
	if err != nil {
		return "", err
	}
	defer unlock()

	boardID, _, err := s.reorder.Remove(ctx, id)
	if err != nil {
		return "", err
	}
	return boardID, nil
}

// Compact renumbers the lists of a board.
func (s *ListStore) Compact(ctx context.Context, boardID string) ([]reorder.Item, error) {
	return s.reorder.Compact(ctx, boardID)
}
