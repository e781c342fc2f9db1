package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/service"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Generate and show today's tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			res, err := svc.Generate(ctx)
			if err != nil {
				return err
			}
			if res.Expired > 0 {
				fmt.Printf("%d seed(s) expired from the queue\n", res.Expired)
			}

			views, err := svc.DueTasks(ctx)
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Println("Nothing on today's list.")
				return nil
			}

			current, err := svc.Availability().Current(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Availability: %s\n\n", current)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tTIER\tTASK\t")
			for _, v := range views {
				marker := ""
				if v.Suggested && v.Instance.Status == domain.StatusPending {
					marker = " *"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\t\n",
					v.Instance.ID, v.Instance.Status, v.Template.Tier, v.Template.Title, marker)
			}
			return w.Flush()
		})
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete [instance-id]",
	Short: "Complete a pending task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			return svc.CompleteTask(ctx, args[0])
		})
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip [instance-id]",
	Short: "Skip a pending task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			return svc.SkipTask(ctx, args[0])
		})
	},
}

var deferTo string

var deferCmd = &cobra.Command{
	Use:   "defer [instance-id]",
	Short: "Defer a pending task to the seed queue or a specific date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			var target *domain.Date
			if deferTo != "" {
				d, err := domain.ParseDate(deferTo)
				if err != nil {
					return err
				}
				target = &d
			}
			return svc.DeferTask(ctx, args[0], target)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset [instance-id]",
	Short: "Return a completed, skipped or deferred task to pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			return svc.ResetTask(ctx, args[0])
		})
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote [instance-id]",
	Short: "Pull a seed onto today's list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			return svc.PromoteToToday(ctx, args[0])
		})
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss [instance-id]",
	Short: "Drop a seed from the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			return svc.DismissSeed(ctx, args[0])
		})
	},
}

var seedsCmd = &cobra.Command{
	Use:   "seeds",
	Short: "Show the seed queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			seeds, err := svc.SeedQueue(ctx)
			if err != nil {
				return err
			}
			if len(seeds) == 0 {
				fmt.Println("The seed queue is empty.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMISSED ON\tTASK\t")
			for _, v := range seeds {
				fmt.Fprintf(w, "%s\t%s\t%s\t\n", v.Instance.ID, v.Instance.Date, v.Template.Title)
			}
			return w.Flush()
		})
	},
}

var upcomingDays int

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Show the next occurrence of each template",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			entries, err := svc.Upcoming(ctx, upcomingDays)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("Nothing due in the next %d day(s).\n", upcomingDays)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DUE\tTIER\tTASK\t")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t\n", e.Due, e.Template.Tier, e.Template.Title)
			}
			return w.Flush()
		})
	},
}

var availabilityCmd = &cobra.Command{
	Use:   "availability [state]",
	Short: "Show availability, or override it for the rest of the day",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			if len(args) == 1 {
				state, err := domain.NewAvailability(args[0])
				if err != nil {
					return err
				}
				svc.Availability().SetOverride(state)
			}
			current, err := svc.Availability().Current(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Availability: %s\n", current)
			return nil
		})
	},
}

func init() {
	deferCmd.Flags().StringVar(&deferTo, "to", "", "target date (YYYY-MM-DD); omit for the seed queue")
	upcomingCmd.Flags().IntVar(&upcomingDays, "days", 7, "lookahead horizon in days")
}
