package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search graduate portfolios",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := svc.browse.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(outcome.Results) == 0 {
			fmt.Fprintln(out, outcome.Message)
			return nil
		}
		for _, r := range outcome.Results {
			fmt.Fprintf(out, "%d\t%s\t%s\n", r.GraduateID, r.FullName, r.ProfessionalTitle)
		}
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Graduate profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your graduate profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		g, err := svc.browse.MyProfile(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:     %s\n", g.FullName())
		fmt.Fprintf(out, "Username: %s\n", g.Username)
		fmt.Fprintf(out, "Email:    %s\n", g.Email)
		fmt.Fprintf(out, "Contact:  %s\n", g.ContactNumber)
		fmt.Fprintf(out, "Address:  %s\n", g.Address)
		if g.Birthday != "" {
			fmt.Fprintf(out, "Birthday: %s\n", g.Birthday)
		}
		if g.HourlyRate > 0 {
			fmt.Fprintf(out, "Hourly:   %.2f\n", g.HourlyRate)
		}
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
}
