package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/graceolivia/rhythms/internal/service"
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Manage habit blocks",
}

var blockActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the block covering the current moment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			b, err := svc.Blocks().Active(ctx)
			if err != nil {
				return err
			}
			if b == nil {
				fmt.Println("No block is active right now.")
				return nil
			}
			fmt.Printf("Active block: %s (%d item(s))\n", b.Name, len(b.Items))
			return nil
		})
	},
}

var blockNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next block of the day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			b, err := svc.Blocks().Next(ctx)
			if err != nil {
				return err
			}
			if b == nil {
				fmt.Println("No more blocks today.")
				return nil
			}
			fmt.Printf("Next block: %s at %s\n", b.Name, formatMinute(*b.StartMinute))
			return nil
		})
	},
}

var (
	blockStart      string
	blockEnd        string
	blockEvent      string
	blockWindow     int
	blockTasks      []string
	blockChoreSlots int
	blockRecurrence string
	blockDays       []string
	blockPosition   int
)

var blockAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a habit block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			days, err := parseWeekdays(blockDays)
			if err != nil {
				return err
			}

			params := service.BlockParams{
				Name:          args[0],
				EventKey:      blockEvent,
				WindowMinutes: blockWindow,
				TaskIDs:       blockTasks,
				ChoreSlots:    blockChoreSlots,
				Recurrence:    blockRecurrence,
				DaysOfWeek:    days,
				Position:      blockPosition,
			}
			if blockStart != "" {
				m, err := parseMinute(blockStart)
				if err != nil {
					return err
				}
				params.StartMinute = &m
			}
			if blockEnd != "" {
				m, err := parseMinute(blockEnd)
				if err != nil {
					return err
				}
				params.EndMinute = &m
			}

			b, err := svc.CreateBlock(ctx, params)
			if err != nil {
				return err
			}
			fmt.Printf("Created block %s\n", b.ID)
			return nil
		})
	},
}

var blockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habit blocks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			all, err := svc.HabitBlocks(ctx)
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Println("No blocks yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tANCHOR\tNAME\t")
			for _, b := range all {
				anchor := "event:" + deref(b.EventKey)
				if b.TimeAnchored() {
					anchor = formatMinute(*b.StartMinute)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t\n", b.ID, anchor, b.Name)
			}
			return w.Flush()
		})
	},
}

// parseMinute turns "HH:MM" into a minute of the day.
func parseMinute(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func init() {
	blockAddCmd.Flags().StringVar(&blockStart, "start", "", "start time (HH:MM)")
	blockAddCmd.Flags().StringVar(&blockEnd, "end", "", "end time (HH:MM)")
	blockAddCmd.Flags().StringVar(&blockEvent, "event", "", "event key that opens the block")
	blockAddCmd.Flags().IntVar(&blockWindow, "window", 0, "window minutes for event blocks (default 90)")
	blockAddCmd.Flags().StringSliceVar(&blockTasks, "tasks", nil, "template IDs in the block")
	blockAddCmd.Flags().IntVar(&blockChoreSlots, "chore-slots", 0, "number of open chore slots")
	blockAddCmd.Flags().StringVar(&blockRecurrence, "recurrence", "daily", "recurrence rule")
	blockAddCmd.Flags().StringSliceVar(&blockDays, "on", nil, "weekdays, overrides recurrence")
	blockAddCmd.Flags().IntVar(&blockPosition, "position", 0, "declaration order for overlap resolution")

	blockCmd.AddCommand(blockActiveCmd)
	blockCmd.AddCommand(blockNextCmd)
	blockCmd.AddCommand(blockAddCmd)
	blockCmd.AddCommand(blockListCmd)
}
