package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/garden"
	"github.com/graceolivia/rhythms/internal/service"
)

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Manage garden challenges",
}

var (
	challengeKind       string
	challengeTarget     int
	challengeFlower     string
	challengeSequential bool
	challengeSeeds      []string
)

var challengePlantCmd = &cobra.Command{
	Use:   "plant [plot-id] [title]",
	Short: "Plant a challenge on a plot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			kind, err := domain.NewChallengeKind(challengeKind)
			if err != nil {
				return err
			}
			flower, err := domain.NewFlowerType(challengeFlower)
			if err != nil {
				return err
			}

			params := garden.PlantParams{
				PlotID:       args[0],
				Title:        args[1],
				Kind:         kind,
				TargetCount:  challengeTarget,
				Sequential:   challengeSequential,
				RewardFlower: flower,
			}
			for _, title := range challengeSeeds {
				params.Seeds = append(params.Seeds, garden.SeedSpec{
					Title:      title,
					Recurrence: domain.RecurrenceDaily,
				})
			}

			c, err := svc.Garden().Plant(ctx, params)
			if err != nil {
				return err
			}
			fmt.Printf("Planted %q on %s (challenge %s)\n", c.Title, c.PlotID, c.ID)
			return nil
		})
	},
}

var challengeProgressCmd = &cobra.Command{
	Use:   "progress [challenge-id]",
	Short: "Record one unit of progress for today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			res, err := svc.Garden().RecordProgress(ctx, args[0], domain.DateOf(time.Now()))
			if err != nil {
				return err
			}
			switch res {
			case garden.ProgressBloomed:
				fmt.Println("The challenge bloomed!")
			case garden.ProgressAlreadyRecorded:
				fmt.Println("Already counted for today.")
			case garden.ProgressNotFound:
				fmt.Println("No such active challenge.")
			default:
				fmt.Println("Progress recorded.")
			}
			return nil
		})
	},
}

var challengeAbandonCmd = &cobra.Command{
	Use:   "abandon [challenge-id]",
	Short: "Abandon an active challenge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			return svc.Garden().Abandon(ctx, args[0])
		})
	},
}

var challengeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			all, err := svc.Challenges(ctx)
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Println("No challenges yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLOT\tSTATE\tSTAGE\tPROGRESS\tTITLE\t")
			for _, c := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\t\n",
					c.ID, c.PlotID, c.State, c.Stage(), c.TotalProgress, c.TargetCount, c.Title)
			}
			return w.Flush()
		})
	},
}

var gardenCmd = &cobra.Command{
	Use:   "garden",
	Short: "Show the flowers earned so far",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			flowers, err := svc.Flowers(ctx)
			if err != nil {
				return err
			}
			if len(flowers) == 0 {
				fmt.Println("The garden is empty. Complete a day or bloom a challenge.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EARNED\tFLOWER\t")
			for _, f := range flowers {
				fmt.Fprintf(w, "%s\t%s\t\n", f.EarnedOn, f.Type)
			}
			return w.Flush()
		})
	},
}

func init() {
	challengePlantCmd.Flags().StringVar(&challengeKind, "kind", "streak", "streak or cumulative")
	challengePlantCmd.Flags().IntVar(&challengeTarget, "target", 7, "progress target to bloom")
	challengePlantCmd.Flags().StringVar(&challengeFlower, "flower", "tulip", "reward flower type")
	challengePlantCmd.Flags().BoolVar(&challengeSequential, "sequential", false, "activate seeded tasks one at a time")
	challengePlantCmd.Flags().StringSliceVar(&challengeSeeds, "seed", nil, "titles of daily tending tasks to seed")

	challengeCmd.AddCommand(challengePlantCmd)
	challengeCmd.AddCommand(challengeProgressCmd)
	challengeCmd.AddCommand(challengeAbandonCmd)
	challengeCmd.AddCommand(challengeListCmd)
}
