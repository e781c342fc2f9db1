package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/graceolivia/rhythms/internal/service"
)

var childCmd = &cobra.Command{
	Use:   "child",
	Short: "Manage children and their care status",
}

var childAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a child",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			child, err := svc.CreateChild(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Added %s (%s)\n", child.Name, child.ID)
			return nil
		})
	},
}

var childListCmd = &cobra.Command{
	Use:   "list",
	Short: "List children",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			children, err := svc.Children(ctx)
			if err != nil {
				return err
			}
			if len(children) == 0 {
				fmt.Println("No children registered.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCARE STATUS\tNAME\t")
			for _, c := range children {
				fmt.Fprintf(w, "%s\t%s\t%s\t\n", c.ID, c.CareStatus, c.Name)
			}
			return w.Flush()
		})
	},
}

func init() {
	childCmd.AddCommand(childAddCmd)
	childCmd.AddCommand(childListCmd)
}
