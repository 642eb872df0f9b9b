package main

import (
	"fmt"

	"tarabaho-web/internal/domain"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a Tarabaho account",
	Long: `Create a client (user) or graduate account. The form is checked
locally before anything is sent. Registering does not sign you in.`,
}

var (
	userForm     domain.UserRegistration
	graduateForm domain.GraduateRegistration
)

var registerUserCmd = &cobra.Command{
	Use:   "user",
	Short: "Register a client account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if userForm.ConfirmPassword == "" {
			userForm.ConfirmPassword = userForm.Password
		}
		res, err := svc.registration.RegisterUser(cmd.Context(), &userForm)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

var registerGraduateCmd = &cobra.Command{
	Use:   "graduate",
	Short: "Register a graduate account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if graduateForm.ConfirmPassword == "" {
			graduateForm.ConfirmPassword = graduateForm.Password
		}
		res, err := svc.registration.RegisterGraduate(cmd.Context(), &graduateForm)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

func init() {
	f := registerUserCmd.Flags()
	f.StringVar(&userForm.Username, "username", "", "Username")
	f.StringVar(&userForm.Password, "password", "", "Password (at least 6 characters)")
	f.StringVar(&userForm.ConfirmPassword, "confirm-password", "", "Password again (default: --password)")
	f.StringVar(&userForm.FirstName, "first-name", "", "First name")
	f.StringVar(&userForm.LastName, "last-name", "", "Last name")
	f.StringVar(&userForm.Email, "email", "", "Email address")
	f.StringVar(&userForm.Address, "address", "", "Address")
	f.StringVar(&userForm.ContactNumber, "phone", "", "Phone number")
	f.StringVar(&userForm.Birthday, "birthday", "", "Birthday (YYYY-MM-DD)")

	g := registerGraduateCmd.Flags()
	g.StringVar(&graduateForm.Username, "username", "", "Username")
	g.StringVar(&graduateForm.Password, "password", "", "Password (at least 6 characters)")
	g.StringVar(&graduateForm.ConfirmPassword, "confirm-password", "", "Password again (default: --password)")
	g.StringVar(&graduateForm.FirstName, "first-name", "", "First name")
	g.StringVar(&graduateForm.MiddleName, "middle-name", "", "Middle name")
	g.StringVar(&graduateForm.LastName, "last-name", "", "Last name")
	g.StringVar(&graduateForm.Email, "email", "", "Email address")
	g.StringVar(&graduateForm.Address, "address", "", "Address")
	g.StringVar(&graduateForm.ContactNumber, "contact-no", "", "Contact number")
	g.StringVar(&graduateForm.Birthday, "birthday", "", "Birthday (YYYY-MM-DD)")
	g.Float64Var(&graduateForm.HourlyRate, "hourly", 0, "Hourly rate")

	registerCmd.AddCommand(registerUserCmd)
	registerCmd.AddCommand(registerGraduateCmd)
}
