package cli

import (
	"errors"
	"fmt"

	lineageservice "koppara_backend/internal/lineage/service"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultCLIActor = "cli:networkctl"

var (
	reassignSponsor string
	reassignDetach  bool
	reassignReason  string
	reassignActor   string
)

var lineageCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Inspect and change the sponsor graph",
}

var lineageVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Scan the sponsor graph for self loops, dangling sponsors and cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		report, err := b.VerifyIntegrity(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "checked %d distributors, %d roots\n", report.Checked, report.Roots)
		for _, id := range report.SelfLoops {
			fmt.Fprintf(out, "[%s] self loop: %s\n", color.RedString("FAIL"), id)
		}
		for _, id := range report.Dangling {
			fmt.Fprintf(out, "[%s] dangling sponsor: %s\n", color.RedString("FAIL"), id)
		}
		for _, cycle := range report.Cycles {
			fmt.Fprintf(out, "[%s] cycle: %v\n", color.RedString("FAIL"), cycle)
		}

		if !report.Healthy() {
			return fmt.Errorf("sponsor graph has %d corruption(s)", len(report.SelfLoops)+len(report.Dangling)+len(report.Cycles))
		}
		fmt.Fprintf(out, "[%s] sponsor graph is a forest\n", color.GreenString("PASS"))
		return nil
	},
}

var lineageReassignCmd = &cobra.Command{
	Use:   "reassign <distributor-id>",
	Short: "Move a distributor under a new sponsor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		distributorID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid distributor id: %w", err)
		}

		var sponsorID *uuid.UUID
		switch {
		case reassignDetach && reassignSponsor != "":
			return errors.New("--sponsor and --detach are mutually exclusive")
		case reassignSponsor != "":
			id, err := uuid.Parse(reassignSponsor)
			if err != nil {
				return fmt.Errorf("invalid sponsor id: %w", err)
			}
			sponsorID = &id
		case !reassignDetach:
			return errors.New("either --sponsor or --detach is required")
		}

		b, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		entry, err := b.ReassignSponsor(cmd.Context(), lineageservice.ReassignCommand{
			Actor:         reassignActor,
			DistributorID: distributorID,
			NewSponsorID:  sponsorID,
			Reason:        reassignReason,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s -> %s (audit %s)\n",
			color.GreenString("OK"), entry.DistributorID, sponsorLabel(entry.PreviousSponsorID), sponsorLabel(entry.NewSponsorID), entry.ID)
		return nil
	},
}

func sponsorLabel(id *uuid.UUID) string {
	if id == nil {
		return "(root)"
	}
	return id.String()
}

func init() {
	lineageReassignCmd.Flags().StringVar(&reassignSponsor, "sponsor", "", "New sponsor id")
	lineageReassignCmd.Flags().BoolVar(&reassignDetach, "detach", false, "Make the distributor a root")
	lineageReassignCmd.Flags().StringVar(&reassignReason, "reason", "", "Reason recorded in the audit log")
	lineageReassignCmd.Flags().StringVar(&reassignActor, "actor", defaultCLIActor, "Actor recorded in the audit log")
	_ = lineageReassignCmd.MarkFlagRequired("reason")

	lineageCmd.AddCommand(lineageVerifyCmd)
	lineageCmd.AddCommand(lineageReassignCmd)
	rootCmd.AddCommand(lineageCmd)
}
