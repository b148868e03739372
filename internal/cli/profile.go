package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trademind/internal/models"
)

// addProfileCommands adds trader profile commands.
func addProfileCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Trader profile",
		Long:  "Show and edit the journal owner's profile.",
	}

	cmd.AddCommand(newProfileShowCmd(app))
	cmd.AddCommand(newProfileSetCmd(app))
	cmd.AddCommand(newProfileRefreshCmd(app))

	rootCmd.AddCommand(cmd)
}

func renderProfile(output *Output, u *models.User, app *App) {
	loc := app.Config.Location()
	plan := "-"
	if u.SelectedPlan != "" {
		plan = string(u.SelectedPlan)
	}
	paid := output.Yellow("free")
	if u.IsPaid {
		paid = output.Green("paid")
	}
	lines := []string{
		fmt.Sprintf("ID:       %s", u.DisplayID),
		fmt.Sprintf("Name:     %s", u.Name),
		fmt.Sprintf("Email:    %s", u.Email),
		fmt.Sprintf("Status:   %s", u.Status),
		fmt.Sprintf("Plan:     %s (%s)", plan, paid),
		fmt.Sprintf("Joined:   %s", FormatDate(u.JoinedAt, loc)),
	}
	if u.Mobile != "" {
		lines = append(lines, fmt.Sprintf("Mobile:   %s", u.Mobile))
	}
	if u.OwnReferralCode != "" {
		lines = append(lines, fmt.Sprintf("Referral: %s", u.OwnReferralCode))
	}
	if u.IsAdmin() {
		lines = append(lines, "Role:     "+output.BoldText(string(u.Role)))
	}
	output.Box("Trader Profile", lines)
}

func newProfileShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the trader profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			u, err := app.Profiles.Resolve(ctx, app.Journal.UserID())
			if err != nil {
				output.Error("Failed to load profile: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(u)
			}
			renderProfile(output, u, app)
			return nil
		},
	}
}

func newProfileSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the trader profile",
		Example: `  trademind profile set --name "Asha Rao" --email asha@example.com
  trademind profile set --plan annual`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			u, err := app.Profiles.Resolve(ctx, app.Journal.UserID())
			if err != nil {
				output.Error("Failed to load profile: %v", err)
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				u.Name, _ = flags.GetString("name")
			}
			if flags.Changed("email") {
				u.Email, _ = flags.GetString("email")
			}
			if flags.Changed("mobile") {
				u.Mobile, _ = flags.GetString("mobile")
			}
			if flags.Changed("plan") {
				s, _ := flags.GetString("plan")
				plan, err := parsePlan(s)
				if err != nil {
					output.Error("%v", err)
					return err
				}
				u.SelectedPlan = plan
			}

			if err := app.Profiles.Update(ctx, u); err != nil {
				output.Error("Failed to save profile: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(u)
			}
			output.Success("✓ Profile updated")
			return nil
		},
	}

	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("mobile", "", "mobile number")
	cmd.Flags().String("plan", "", "plan: monthly, six_months or annual")
	return cmd
}

func parsePlan(s string) (models.PlanType, error) {
	switch p := models.PlanType(strings.ToUpper(strings.ReplaceAll(s, "-", "_"))); p {
	case models.PlanMonthly, models.PlanSixMonths, models.PlanAnnual:
		return p, nil
	}
	return "", fmt.Errorf("invalid plan: %s (use monthly, six_months or annual)", s)
}

func newProfileRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload the profile from the journal database",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.context()
			defer cancel()

			u, err := app.Profiles.Refresh(ctx, app.Journal.UserID())
			if err != nil {
				output.Error("Failed to refresh profile: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(u)
			}
			output.Success("✓ Profile refreshed")
			renderProfile(output, u, app)
			return nil
		},
	}
}
