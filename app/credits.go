package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/univhr/hrcore/internal/daemon"
	"github.com/univhr/hrcore/internal/db/controller/leavesettings"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/rbac"
)

func init() { //nolint: gochecknoinits
	creditsGenerateCmd.Flags().IntVar(&creditYear, "year", 0, "Credit year (default Leave.DefaultYear or the current year)")
	creditsGenerateCmd.Flags().UintVar(&creditEmployee, "employee", 0, "Only generate the credits of this employee id")
	creditsGenerateCmd.Flags().BoolVar(&creditForce, "force", false, "Reset existing rows to the policy allowance")

	creditsCmd.AddCommand(creditsGenerateCmd)
	rootCmd.AddCommand(creditsCmd)
}

var (
	creditYear     int
	creditEmployee uint
	creditForce    bool

	creditsCmd = &cobra.Command{
		Use:   "credits",
		Short: "Manage the leave credit ledger",
	}

	creditsGenerateCmd = &cobra.Command{
		Use:    "generate",
		Short:  "Create the leave credit rows of a year from the leave policies",
		PreRun: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, errOpen := daemon.Open(&cfg)
			if errOpen != nil {
				return errOpen
			}

			svc := rbac.NewService(gdb)

			year := creditYear
			if year == 0 {
				year = cfg.Leave.DefaultYear
			}

			if year == 0 {
				year = svc.Now().Year()
			}

			var employeeID *uint
			if creditEmployee != 0 {
				employeeID = &creditEmployee
			}

			ledger := leave.NewService(svc, leavesettings.Settings{HRBypassNote: cfg.Leave.HRBypassNote}).Ledger()

			report, errApply := ledger.ApplyPolicies(context.Background(), employeeID, year, creditForce)
			if errApply != nil {
				return errApply
			}

			log.Info().Int("year", year).Int("employees", report.Employees).Int("created", report.Created).
				Int("updated", report.Updated).Int("skipped", report.Skipped).Msg("leave credits generated")
			cmd.Printf("%d employees: %d created, %d updated, %d skipped\n",
				report.Employees, report.Created, report.Updated, report.Skipped)

			return nil
		},
	}
)
