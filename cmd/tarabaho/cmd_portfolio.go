package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"tarabaho-web/internal/domain"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	portfolioFile string
	trendPeriod   string
	confirmDelete bool
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "View and edit your graduate portfolio",
	Long: `Edit a portfolio as a YAML file:

  tarabaho portfolio pull -f portfolio.yaml
  $EDITOR portfolio.yaml
  tarabaho portfolio push -f portfolio.yaml

Entries without an id are created, entries removed from the file are
deleted, and "file:" or "avatar:" paths are uploaded on push.`,
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your portfolio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		view, err := svc.browse.MyPortfolio(cmd.Context())
		if err != nil {
			return err
		}
		if !view.Exists {
			fmt.Fprintln(cmd.OutOrStdout(), "You do not have a portfolio yet")
			return nil
		}
		draft := domain.NewDraft(view.Graduate.ID, view.Portfolio, view.Certificates)
		return printYAML(cmd.OutOrStdout(), newDocument(draft))
	},
}

// portfolioPullCmd writes the editable form of the portfolio
var portfolioPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Write your portfolio to a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		draft, err := openDraft(cmd)
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if portfolioFile != "" && portfolioFile != "-" {
			f, err := os.Create(portfolioFile)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := printYAML(out, newDocument(draft)); err != nil {
			return err
		}
		if draft.State == domain.DraftEmpty {
			fmt.Fprintln(cmd.ErrOrStderr(), "No portfolio yet: fill in the file and push it to create one")
		}
		return nil
	},
}

// portfolioPushCmd saves the file in one batch
var portfolioPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Save a YAML file as your portfolio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		doc, err := loadDocument(cmd)
		if err != nil {
			return err
		}
		draft, err := openDraft(cmd)
		if err != nil {
			return err
		}
		if err := applyDocument(draft, doc, readLocalFile); err != nil {
			return err
		}

		creating := draft.Creating()
		saved, err := svc.portfolio.Save(cmd.Context(), draft)
		if err != nil {
			return err
		}
		verb := "updated"
		if creating {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Portfolio %d %s\n", saved.ID, verb)
		return nil
	},
}

var portfolioDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your portfolio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !confirmDelete {
			return errors.New("refusing to delete without --yes")
		}
		if err := svc.portfolio.Delete(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Portfolio deleted")
		return nil
	},
}

var portfolioStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show portfolio view statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := svc.browse.ViewStats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Total views:      %d\n", s.TotalViews)
		fmt.Fprintf(out, "Unique viewers:   %d\n", s.UniqueViewers)
		fmt.Fprintf(out, "Views today:      %d\n", s.ViewsToday)
		fmt.Fprintf(out, "Views this week:  %d\n", s.ViewsThisWeek)
		fmt.Fprintf(out, "Views this month: %d\n", s.ViewsThisMonth)
		return nil
	},
}

var portfolioTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show portfolio views over time",
	RunE: func(cmd *cobra.Command, _ []string) error {
		points, err := svc.browse.ViewTrends(cmd.Context(), trendPeriod)
		if err != nil {
			return err
		}
		for _, p := range points {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", p.Date, p.Views)
		}
		return nil
	},
}

func init() {
	portfolioPullCmd.Flags().StringVarP(&portfolioFile, "file", "f", "-", "Output file (- for stdout)")
	portfolioPushCmd.Flags().StringVarP(&portfolioFile, "file", "f", "-", "Input file (- for stdin)")
	portfolioDeleteCmd.Flags().BoolVar(&confirmDelete, "yes", false, "Confirm deletion")
	portfolioTrendsCmd.Flags().StringVar(&trendPeriod, "period", "week", "week, month or year")

	portfolioCmd.AddCommand(portfolioShowCmd)
	portfolioCmd.AddCommand(portfolioPullCmd)
	portfolioCmd.AddCommand(portfolioPushCmd)
	portfolioCmd.AddCommand(portfolioDeleteCmd)
	portfolioCmd.AddCommand(portfolioStatsCmd)
	portfolioCmd.AddCommand(portfolioTrendsCmd)
}

func openDraft(cmd *cobra.Command) (*domain.PortfolioDraft, error) {
	draft, err := svc.portfolio.OpenEditor(cmd.Context())
	if err != nil {
		return nil, err
	}
	if draft.State == domain.DraftLoadFailed {
		return nil, fmt.Errorf("could not load your portfolio: %s", draft.Error)
	}
	return draft, nil
}

func loadDocument(cmd *cobra.Command) (*portfolioDocument, error) {
	var in io.Reader = cmd.InOrStdin()
	if portfolioFile != "" && portfolioFile != "-" {
		f, err := os.Open(portfolioFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	var doc portfolioDocument
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse portfolio file: %w", err)
	}
	return &doc, nil
}
