package main

import (
	"fmt"

	"github.com/boardwalk-dev/boardwalk/internal/store"
	"github.com/boardwalk-dev/boardwalk/internal/utils"
	"github.com/spf13/cobra"
)

var repairBoardID string

func repairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Renumber the lists and tasks of a board",
		Long: `Rewrite list and task positions of a board as 0..n-1.

Run this while the server is stopped or when REDIS_URL is shared with
the running instances; the repair takes the same container locks as
the API.

Examples:
  boardwalk repair --board 6f1c2a4e-8a51-4a3b-9d4e-2f0a1b3c4d5e`,
		RunE: runRepair,
	}

	cmd.Flags().StringVar(&repairBoardID, "board", "", "board id to repair")
	_ = cmd.MarkFlagRequired("board")

	return cmd
}

func runRepair(cmd *cobra.Command, args []string) error {
	boardID, err := utils.ParseUUID(repairBoardID)
	if err != nil {
		return err
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	l, closeLocker, err := newLocker(a.cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	report, err := store.New(a.db, l).RepairBoard(cmd.Context(), boardID)
	if err != nil {
		return fmt.Errorf("repair board %s: %w", boardID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "board %s: %d lists, %d tasks renumbered\n", report.BoardID, report.Lists, report.Tasks)
	return nil
}
