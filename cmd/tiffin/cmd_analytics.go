package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tiffinbox/tiffin/app/services"
	"github.com/tiffinbox/tiffin/pkg/app"
	"github.com/tiffinbox/tiffin/pkg/auth"
	"github.com/tiffinbox/tiffin/pkg/console"
)

// tiffin analytics:restaurant <id>
var analyticsCmd = &cobra.Command{
	Use:   "analytics:restaurant <restaurant_id>",
	Short: "Print a restaurant's twelve-month sales report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid restaurant id %q", args[0])
		}

		db, err := app.BootDB()
		if err != nil {
			return err
		}

		ctx := context.Background()
		admin := auth.Identity{Role: auth.RoleAdmin}
		svc := services.NewAnalyticsService(db)

		report, err := svc.Sales(ctx, admin, id)
		if err != nil {
			return err
		}
		orders, err := svc.Orders(ctx, admin, id)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(report.Months)+1)
		for i, m := range report.Months {
			rows = append(rows, []string{m.Month, strconv.Itoa(orders[i].Count), m.Revenue.StringFixed(2)})
		}
		rows = append(rows, []string{"Total", "", report.TotalRevenue.StringFixed(2)})
		return console.Table(os.Stdout, []string{"Month", "Paid orders", "Revenue"}, rows)
	},
}
