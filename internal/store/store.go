// Package store holds the gorm-backed persistence for users, boards, lists
// and tasks. Lists and tasks are positioned items: every write that changes
// their order goes through a reorder.Service.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/boardwalk-dev/boardwalk/internal/locker"
	"github.com/boardwalk-dev/boardwalk/internal/models"
	"github.com/boardwalk-dev/boardwalk/internal/reorder"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"gorm.io/gorm"
)

// Lock key namespaces: lists are ordered within a board, tasks within a list.
const (
	kindBoard = "board"
	kindList  = "list"
)

const positionOrder = "position ASC, created_at ASC, id ASC"

type Store struct {
	DB     *gorm.DB
	Users  *UserStore
	Boards *BoardStore
	Lists  *ListStore
	Tasks  *TaskStore
}

func New(db *gorm.DB, l locker.Locker) *Store {
	lists := reorder.NewService[*listTx](kindBoard, &positionRepo[*listTx]{db: db, wrap: newListTx}, l)
	tasks := reorder.NewService[*taskTx](kindList, &positionRepo[*taskTx]{db: db, wrap: newTaskTx}, l)

	boards := &BoardStore{db: db, locker: l}

	return &Store{
		DB:     db,
		Users:  &UserStore{db: db},
		Boards: boards,
		Lists:  &ListStore{db: db, boards: boards, reorder: lists, locker: l},
		Tasks:  &TaskStore{db: db, boards: boards, reorder: tasks},
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func orderedByPosition(db *gorm.DB) *gorm.DB {
	return db.Order(positionOrder)
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return types.ErrConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return types.ErrNotFound
	}
	return err
}

// mustExist returns types.ErrNotFound unless a row of model with id exists.
// Inserts call it under the container lock so a parent deleted after the
// ownership check is reported as missing rather than as a key violation.
func mustExist(ctx context.Context, db *gorm.DB, model interface{}, id string) error {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return types.ErrNotFound
	}
	return nil
}

// positionTx is the reorder.Tx view of one positioned table.
type positionTx struct {
	db        *gorm.DB
	table     string
	container string
}

type positionRow struct {
	ID          string
	ContainerID string
	Position    int
}

func (t *positionTx) query(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Table(t.table)
}

func (t *positionTx) Get(ctx context.Context, id string) (reorder.Item, error) {
	var row positionRow
	err := t.query(ctx).
		Select("id", t.container+" AS container_id", "position").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return reorder.Item{}, translate(err)
	}
	return reorder.Item(row), nil
}

func (t *positionTx) Items(ctx context.Context, containerID string) ([]reorder.Item, error) {
	var rows []positionRow
	err := t.query(ctx).
		Select("id", t.container+" AS container_id", "position").
		Where(t.container+" = ?", containerID).
		Order(positionOrder).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]reorder.Item, len(rows))
	for i, row := range rows {
		items[i] = reorder.Item(row)
	}
	return items, nil
}

func (t *positionTx) Tail(ctx context.Context, containerID string) (int, error) {
	var highest sql.NullInt64
	err := t.query(ctx).
		Select("MAX(position)").
		Where(t.container+" = ?", containerID).
		Row().Scan(&highest)
	if err != nil {
		return 0, err
	}
	if !highest.Valid {
		return 0, nil
	}
	return int(highest.Int64) + 1, nil
}

func (t *positionTx) SetPosition(ctx context.Context, u reorder.Update) error {
	res := t.query(ctx).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"position":   u.Position,
			t.container:  u.ContainerID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

type listTx struct{ positionTx }

func newListTx(db *gorm.DB) *listTx {
	return &listTx{positionTx{db: db, table: "lists", container: "board_id"}}
}

// Delete removes the list together with its tasks.
func (t *listTx) Delete(ctx context.Context, id string) error {
	if err := t.db.WithContext(ctx).Where("list_id = ?", id).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(&models.List{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

type taskTx struct{ positionTx }

func newTaskTx(db *gorm.DB) *taskTx {
	return &taskTx{positionTx{db: db, table: "tasks", container: "list_id"}}
}

func (t *taskTx) Delete(ctx context.Context, id string) error {
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

// positionRepo adapts a gorm handle to reorder.Repository.
type positionRepo[T reorder.Tx] struct {
	db   *gorm.DB
	wrap func(*gorm.DB) T
}

func (r *positionRepo[T]) Find(ctx context.Context, id string) (reorder.Item, error) {
	return r.wrap(r.db).Get(ctx, id)
}

func (r *positionRepo[T]) Transaction(ctx context.Context, fn func(tx T) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.wrap(tx))
	})
}
