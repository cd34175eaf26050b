package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boostmanager/internal/client/client"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

func newAuthCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign up, sign in and manage the session",
	}
	cmd.AddCommand(
		newSignUpCmd(app),
		newConfirmCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newRecoverCmd(app),
		newResetCmd(app),
		newMeCmd(app),
	)
	return cmd
}

// promptIfEmpty asks for v when the flag was left empty.
func (a *App) promptIfEmpty(v *string, prompt string) error {
	if *v != "" {
		return nil
	}
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	*v = s
	return nil
}

func newSignUpCmd(app func() *App) *cobra.Command {
	var form validation.SignupForm

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.promptIfEmpty(&form.Name, "Enter your name"); err != nil {
				return err
			}
			if err := a.promptIfEmpty(&form.Email, "Enter email"); err != nil {
				return err
			}

			var err error
			if form.Password, err = getPassword(a.out, "Password"); err != nil {
				return err
			}
			if form.ConfirmPassword, err = getPassword(a.out, "Confirm password"); err != nil {
				return err
			}
			score := validation.PasswordStrength(form.Password)
			cmd.Printf("Password strength: %s\n", validation.StrengthLabel(score))

			if _, err := a.session.SignUp(cmd.Context(), form); err != nil {
				return err
			}
			cmd.Println("Account created. Check your e-mail for the confirmation code, then run: bmctl auth confirm <code>")
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "e-mail address")
	cmd.Flags().StringVar(&form.CompanyName, "company", "", "company name used during onboarding")
	return cmd
}

func newConfirmCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <code>",
		Short: "Confirm the e-mail address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app().session.ConfirmEmail(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Println("E-mail confirmed. You can sign in now.")
			return nil
		},
	}
}

// loginError turns a rejected login into the message shown to the user.
func loginError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.IsLocked != nil && *apiErr.IsLocked:
		if apiErr.LockedUntil != nil {
			return fmt.Errorf("account locked until %s", apiErr.LockedUntil.Local().Format("15:04"))
		}
		return errors.New("account locked")
	case apiErr.RemainingAttempts != nil:
		return fmt.Errorf("invalid e-mail or password, %d attempt(s) remaining", *apiErr.RemainingAttempts)
	}
	return err
}

func newLoginCmd(app func() *App) *cobra.Command {
	var form validation.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.promptIfEmpty(&form.Email, "Enter email"); err != nil {
				return err
			}
			var err error
			if form.Password, err = getPassword(a.out, "Password"); err != nil {
				return err
			}

			res, err := a.session.Login(cmd.Context(), form)
			if err != nil {
				return loginError(err)
			}

			cmd.Printf("Signed in as %s\n", res.Email)
			if res.NeedsOnboarding {
				cmd.Println("Your workspace is not set up yet. Run: bmctl onboarding")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "e-mail address")
	cmd.Flags().BoolVar(&form.RememberMe, "remember", false, "keep the session after the access token expires")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app().session.Logout(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Signed out.")
			return nil
		},
	}
}

func newRecoverCmd(app func() *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Send a password reset e-mail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.promptIfEmpty(&email, "Enter email"); err != nil {
				return err
			}
			if err := a.session.RecoverPassword(cmd.Context(), email); err != nil {
				return err
			}
			cmd.Println("If the address is registered, a reset link is on its way.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "e-mail address")
	return cmd
}

func newResetCmd(app func() *App) *cobra.Command {
	var form validation.ResetPasswordForm

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with a reset token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.promptIfEmpty(&form.Token, "Enter reset token"); err != nil {
				return err
			}
			var err error
			if form.Password, err = getPassword(a.out, "New password"); err != nil {
				return err
			}
			if err := a.session.ResetPassword(cmd.Context(), form); err != nil {
				return err
			}
			cmd.Println("Password updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Token, "token", "", "reset token from the e-mail")
	return cmd
}

func newMeCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app().session.Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, s)
		},
	}
}
