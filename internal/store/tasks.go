package store

import (
	"context"

	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/reorder"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskStore struct {
	db      *gorm.DB
	boards  *BoardStore
	reorder *reorder.Service[*taskTx]
}

type TaskInput struct {
	Title       string
	Description *string
	Priority    string
	AssignedID  *string
}

// TaskUpdate carries the fields to change; nil means unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *string
	AssignedID  *string
}

// authorizeList resolves a list and checks that ownerID owns its board.
func (s *TaskStore) authorizeList(ctx context.Context, listID, ownerID string) (*models.List, error) {
	var list models.List
	err := s.db.WithContext(ctx).
		Select("id", "board_id").
		Where("id = ?", listID).
		Take(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := s.boards.Authorize(ctx, list.BoardID, ownerID); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *TaskStore) checkAssignee(ctx context.Context, assignedID *string) error {
	if assignedID == nil || *assignedID == "" {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", *assignedID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return types.ErrInvalidReference
	}
	return nil
}

// Create appends a task at the tail of the list.
func (s *TaskStore) Create(ctx context.Context, ownerID, listID string, in TaskInput) (*models.Task, error) {
	if _, err := s.authorizeList(ctx, listID, ownerID); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in.AssignedID); err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}

	task := models.Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		ListID:      listID,
		AssignedID:  in.AssignedID,
	}
	_, err := s.reorder.Append(ctx, listID, func(tx *taskTx, position int) error {
		if err := mustExist(ctx, tx.db, &models.List{}, listID); err != nil {
			return err
		}
		task.Position = position
		return tx.db.WithContext(ctx).Omit(clause.Associations).Create(&task).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return s.load(ctx, task.ID)
}

func (s *TaskStore) load(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).
		Preload("List").
		Preload("AssignedTo").
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// Get returns the task after checking ownership through list and board.
func (s *TaskStore) Get(ctx context.Context, id, ownerID string) (*models.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.boards.Authorize(ctx, task.List.BoardID, ownerID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskStore) ListByList(ctx context.Context, listID, ownerID string) ([]models.Task, error) {
	if _, err := s.authorizeList(ctx, listID, ownerID); err != nil {
		return nil, err
	}

	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Preload("AssignedTo").
		Where("list_id = ?", listID).
		Order(positionOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update changes task attributes. Position and list only change via Move.
func (s *TaskStore) Update(ctx context.Context, id, ownerID string, in TaskUpdate) (*models.Task, error) {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in.AssignedID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
	}
	if in.AssignedID != nil {
		if *in.AssignedID == "" {
			updates["assigned_id"] = nil
		} else {
			updates["assigned_id"] = *in.AssignedID
		}
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	return s.load(ctx, id)
}

// Move repositions a task inside its list or into another list the caller
// owns. sourceID is optional and must match the task's current list. It
// returns the moved task and the ids of every board whose order changed.
func (s *TaskStore) Move(ctx context.Context, id, ownerID string, index int, listID, sourceID string) (*models.Task, []string, error) {
	task, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, nil, err
	}

	if listID == "" {
		listID = task.ListID
	}
	if listID != task.ListID {
		if _, err := s.authorizeList(ctx, listID, ownerID); err != nil {
			return nil, nil, err
		}
	}

	_, err = s.reorder.Move(ctx, reorder.Move{
		ItemID:        id,
		Index:         index,
		SourceID:      sourceID,
		DestinationID: listID,
	})
	if err != nil {
		return nil, nil, err
	}

	moved, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	affected := []string{moved.List.BoardID}
	if task.List.BoardID != moved.List.BoardID {
		affected = append(affected, task.List.BoardID)
	}
	return moved, affected, nil
}

// Delete removes the task and closes the gap in its list. It returns the
// board the task belonged to.
func (s *TaskStore) Delete(ctx context.Context, id, ownerID string) (string, error) {
	task, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return "", err
	}

	if _, _, err := s.reorder.Remove(ctx, id); err != nil {
		return "", err
	}
	return task.List.BoardID, nil
}

// Compact renumbers the tasks of a list.
func (s *TaskStore) Compact(ctx context.Context, listID string) ([]reorder.Item, error) {
	return s.reorder.Compact(ctx, listID)
}
