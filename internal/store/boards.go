package store

import (
	"context"

	"github.com/boardwalk-dev/boardwalk/internal/locker"
	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BoardStore struct {
	db     *gorm.DB
	locker locker.Locker
}

type BoardInput struct {
	Title       string
	Description *string
}

// BoardUpdate carries the fields to change; nil means unchanged.
type BoardUpdate struct {
	Title       *string
	Description *string
}

func withContents(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lists", orderedByPosition).
		Preload("Lists.Tasks", orderedByPosition).
		Preload("Lists.Tasks.AssignedTo")
}

// Create inserts the board and its default lists in one transaction.
func (s *BoardStore) Create(ctx context.Context, ownerID string, in BoardInput) (*models.Board, error) {
	board := models.Board{
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     ownerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&board).Error; err != nil {
			return err
		}

		lists := make([]models.List, len(types.DefaultListTitles))
		for i, title := range types.DefaultListTitles {
			lists[i] = models.List{Title: title, Position: i, BoardID: board.ID}
		}
		if err := tx.Omit(clause.Associations).Create(&lists).Error; err != nil {
			return err
		}

		board.Lists = lists
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &board, nil
}

func (s *BoardStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Board, error) {
	var boards []models.Board
	err := withContents(s.db.WithContext(ctx)).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

// Authorize resolves a board and checks that ownerID owns it.
func (s *BoardStore) Authorize(ctx context.Context, boardID, ownerID string) error {
	var board models.Board
	err := s.db.WithContext(ctx).
		Select("id", "owner_id").
		Where("id = ?", boardID).
		Take(&board).Error
	if err != nil {
		return translate(err)
	}
	if board.OwnerID != ownerID {
		return types.ErrForbidden
	}
	return nil
}

// Get returns the board with its lists and tasks in display order.
func (s *BoardStore) Get(ctx context.Context, id, ownerID string) (*models.Board, error) {
	if err := s.Authorize(ctx, id, ownerID); err != nil {
		return nil, err
	}

	var board models.Board
	if err := withContents(s.db.WithContext(ctx)).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, translate(err)
	}
	return &board, nil
}

func (s *BoardStore) Update(ctx context.Context, id, ownerID string, in BoardUpdate) (*models.Board, error) {
	if err := s.Authorize(ctx, id, ownerID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Board{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, id, ownerID)
}

// Delete removes the board, its lists and their tasks in one transaction.
func (s *BoardStore) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.Authorize(ctx, id, ownerID); err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, kindBoard+":"+id)
	if err != nil {
		return err
	}
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lists := tx.Model(&models.List{}).Select("id").Where("board_id = ?", id)
		if err := tx.Where("list_id IN (?)", lists).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.List{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.Board{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// Layout returns the board's lists and task ids in display order.
func (s *BoardStore) Layout(ctx context.Context, boardID string) ([]types.ListLayout, error) {
	var lists []models.List
	err := s.db.WithContext(ctx).
		Select("id", "position", "board_id", "created_at").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "list_id", "position", "created_at").Order(positionOrder)
		}).
		Where("board_id = ?", boardID).
		Order(positionOrder).
		Find(&lists).Error
	if err != nil {
		return nil, err
	}

	layout := make([]types.ListLayout, len(lists))
	for i, list := range lists {
		taskIDs := make([]string, len(list.Tasks))
		for j, task := range list.Tasks {
			taskIDs[j] = task.ID
		}
		layout[i] = types.ListLayout{ID: list.ID, Position: list.Position, TaskIDs: taskIDs}
	}
	return layout, nil
}
