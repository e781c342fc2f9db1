package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/graceolivia/rhythms/internal/service"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage task templates",
}

var (
	taskTier          string
	taskKind          string
	taskMeal          string
	taskRecurrence    string
	taskDays          []string
	taskScheduledAt   int
	taskCategory      string
	taskAvailability  []string
	taskCareContext   string
	taskInformational bool
	taskChildID       string
	taskChildType     string
)

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			days, err := parseWeekdays(taskDays)
			if err != nil {
				return err
			}

			params := service.TemplateParams{
				Title:                 args[0],
				Tier:                  taskTier,
				Kind:                  taskKind,
				Meal:                  taskMeal,
				Recurrence:            taskRecurrence,
				DaysOfWeek:            days,
				Category:              taskCategory,
				PreferredAvailability: taskAvailability,
				CareContext:           taskCareContext,
				Informational:         taskInformational,
				ChildID:               taskChildID,
				ChildTaskType:         taskChildType,
			}
			if cmd.Flags().Changed("at") {
				at := taskScheduledAt
				params.ScheduledAt = &at
			}

			tpl, err := svc.CreateTemplate(ctx, params)
			if err != nil {
				return err
			}
			fmt.Printf("Created template %s\n", tpl.ID)
			return nil
		})
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List task templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			templates, err := svc.Templates(ctx)
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Println("No templates yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIER\tRECURRENCE\tACTIVE\tTITLE\t")
			for _, tpl := range templates {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t\n",
					tpl.ID, tpl.Tier, tpl.Recurrence, tpl.IsActive, tpl.Title)
			}
			return w.Flush()
		})
	},
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	byName := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	var days []time.Weekday
	for _, name := range names {
		wd, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday: %s", name)
		}
		days = append(days, wd)
	}
	return days, nil
}

func init() {
	taskAddCmd.Flags().StringVar(&taskTier, "tier", "rhythm", "anchor, rhythm or tending")
	taskAddCmd.Flags().StringVar(&taskKind, "kind", "standard", "standard or meal")
	taskAddCmd.Flags().StringVar(&taskMeal, "meal", "", "meal slot for meal templates")
	taskAddCmd.Flags().StringVar(&taskRecurrence, "recurrence", "daily", "daily, weekdays, weekends, weekly, monthly or specific-days")
	taskAddCmd.Flags().StringSliceVar(&taskDays, "on", nil, "weekdays, overrides recurrence (e.g. monday,wednesday)")
	taskAddCmd.Flags().IntVar(&taskScheduledAt, "at", 0, "scheduled minute of day")
	taskAddCmd.Flags().StringVar(&taskCategory, "category", "", "freeform category")
	taskAddCmd.Flags().StringSliceVar(&taskAvailability, "when", nil, "preferred availability states (free, quiet, parenting)")
	taskAddCmd.Flags().StringVar(&taskCareContext, "care-context", "", "legacy care context preference")
	taskAddCmd.Flags().BoolVar(&taskInformational, "informational", false, "time marker, cannot be completed")
	taskAddCmd.Flags().StringVar(&taskChildID, "child", "", "linked child ID")
	taskAddCmd.Flags().StringVar(&taskChildType, "child-task", "", "dropoff, pickup, naptime or wakeup")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
}
