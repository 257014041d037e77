package store

import (
	"context"
	"fmt"

	"github.com/boardwalk-dev/boardwalk/internal/models"
	"go.uber.org/zap"
)

type RepairReport struct {
	BoardID string
	Lists   int
	Tasks   int
}

// RepairBoard renumbers a board's lists and then the tasks of every list so
// both sequences are dense again.
func (s *Store) RepairBoard(ctx context.Context, boardID string) (RepairReport, error) {
	var board models.Board
	if err := s.DB.WithContext(ctx).Select("id").Where("id = ?", boardID).Take(&board).Error; err != nil {
		return RepairReport{}, translate(err)
	}

	report := RepairReport{BoardID: boardID}

	lists, err := s.Lists.Compact(ctx, boardID)
	if err != nil {
		return report, fmt.Errorf("compact lists of board %s: %w", boardID, err)
	}
	report.Lists = len(lists)

	for _, list := range lists {
		tasks, err := s.Tasks.Compact(ctx, list.ID)
		if err != nil {
			return report, fmt.Errorf("compact tasks of list %s: %w", list.ID, err)
		}
		report.Tasks += len(tasks)
	}

	zap.L().Info("board repaired",
		zap.String("board_id", boardID),
		zap.Int("lists", report.Lists),
		zap.Int("tasks", report.Tasks))

	return report, nil
}
