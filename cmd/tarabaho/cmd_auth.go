package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"tarabaho-web/internal/domain"

	"github.com/spf13/cobra"
)

var (
	loginRole     string
	loginUsername string
	loginPassword string
)

// loginCmd signs in and stores the token in the session file
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as a client or a graduate",
	Long: `Sign in to Tarabaho. The password is read from --password, the
TARABAHO_PASSWORD environment variable, or the first line of stdin.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := svc.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := svc.auth.CurrentSession(cmd.Context())
		if err != nil {
			return err
		}
		out := fmt.Sprintf("%s (%s)", sess.Username, sess.UserType)
		if sess.PortfolioID != 0 {
			out += fmt.Sprintf(", portfolio %d", sess.PortfolioID)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// recoverCmd restores a graduate token from the API's own session cookie
var recoverCmd = &cobra.Command{
	Use:   "recover <username>",
	Short: "Recover a graduate session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := svc.auth.RecoverToken(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no session to recover, please log in")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session recovered for", args[0])
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginRole, "role", "r", string(domain.RoleGraduate), "Account type: user or graduate")
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
	_ = loginCmd.MarkFlagRequired("username")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	res, err := svc.auth.Login(cmd.Context(), domain.Role(loginRole), domain.Credentials{
		Username: loginUsername,
		Password: password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", res.Username, res.UserType)
	return nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	if loginPassword != "" {
		return loginPassword, nil
	}
	if env := os.Getenv("TARABAHO_PASSWORD"); env != "" {
		return env, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
