// Command tarabaho is a terminal client for the Tarabaho portfolio service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"tarabaho-web/config"
	"tarabaho-web/internal/domain"
	"tarabaho-web/internal/gateway/tarabaho"
	"tarabaho-web/internal/repository/memory"
	"tarabaho-web/internal/session"
	"tarabaho-web/internal/usecase"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/logger"
	"tarabaho-web/pkg/validation"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	apiURL      string
	sessionFile string
	profile     string
	timeout     time.Duration
	verbose     bool
)

// services holds what the commands need once flags are parsed.
type services struct {
	auth         domain.AuthUsecase
	registration domain.RegistrationUsecase
	portfolio    domain.PortfolioUsecase
	browse       domain.BrowseUsecase
}

var svc *services

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tarabaho",
	Short: "Manage your Tarabaho account and portfolio",
	Long: `tarabaho signs in to the Tarabaho service, registers accounts, and
edits graduate portfolios from the terminal.

The session is kept in a file so later commands stay signed in.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// setup builds the usecases and binds the stored session to the command context.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger.InitWithWriter(os.Stderr, level)

	if apiURL == "" {
		apiURL = cfg.APIURL
	}
	if timeout <= 0 {
		timeout = cfg.HTTPTimeout
	}
	path := sessionFile
	if path == "" {
		path = cfg.SessionFile
	}
	if path == "" {
		if path, err = session.DefaultFilePath(); err != nil {
			return err
		}
	}

	api, err := tarabaho.NewClient(apiURL, timeout)
	if err != nil {
		return err
	}
	validate := validation.New()
	svc = &services{
		auth:         usecase.NewAuthUsecase(api),
		registration: usecase.NewRegistrationUsecase(api, validate),
		portfolio: usecase.NewPortfolioUsecase(usecase.PortfolioDeps{
			Graduates:    api,
			Portfolios:   api,
			Certificates: api,
			Checkpoints:  memory.NewCheckpointRepository(),
			Validate:     validate,
			Avatar: usecase.AvatarOptions{
				MaxDimension: cfg.AvatarMaxDimension,
				Quality:      cfg.AvatarJPEGQuality,
			},
		}),
		browse: usecase.NewBrowseUsecase(api, api, api, validate),
	}

	manager := session.NewManager(session.NewFileStore(path), profile)
	cmd.SetContext(domain.WithSessionManager(cmd.Context(), manager))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Tarabaho API base URL (or set TARABAHO_API_URL env)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Session file (default: user config dir)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "default", "Session profile name")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "HTTP timeout (default: HTTP_TIMEOUT_SECONDS)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(portfolioCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe renders an error for the terminal, listing field errors one per line.
func describe(err error) string {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	msg := appErr.Message
	for _, field := range sortedKeys(appErr.Fields) {
		msg += fmt.Sprintf("\n  %s: %s", field, appErr.Fields[field])
	}
	return msg
}
