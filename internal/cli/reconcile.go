package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

func newReconcileCmd() *cobra.Command {
	var (
		restaurantID string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild restaurant table availability flags from confirmed reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			svc := service.New(repository.NewSQLStore(e.db, e.dialect), service.Options{Log: e.log})
			changes, err := svc.ReconcileTables(cmd.Context(), restaurantID, dryRun)
			if err != nil {
				return err
			}
			printChanges(cmd.OutOrStdout(), changes, dryRun)
			return nil
		},
	}

	cmd.Flags().StringVar(&restaurantID, "restaurant", "", "only reconcile tables of this restaurant")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing them")
	return cmd
}

func printChanges(w io.Writer, changes []model.TableAvailabilityChange, dryRun bool) {
	verb := "updated"
	if dryRun {
		verb = "would update"
	}
	if len(changes) == 0 {
		fmt.Fprintln(w, "all table flags are consistent")
		return
	}
	for _, c := range changes {
		fmt.Fprintf(w, "%s table %s (restaurant %s): is_available %t -> %t\n", verb, c.TableID, c.RestaurantID, c.From, c.To)
	}
	fmt.Fprintf(w, "%d table(s) %s\n", len(changes), verb)
}
