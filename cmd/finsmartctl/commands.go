package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"finsmart/internal/auth"
	"finsmart/internal/core"
	"finsmart/internal/ports"
	"finsmart/internal/services"
)

// App holds the collaborators shared by all commands.
type App struct {
	Store     ports.Store
	Auth      *auth.Service
	Dashboard *services.DashboardService
	Out       io.Writer
	Color     bool
	Clock     func() time.Time
}

func NewRootCmd(app *App) *cobra.Command {
	var nowFlag string
	var noColor bool

	root := &cobra.Command{
		Use:           "finsmartctl",
		Short:         "Administer finsmart users and inspect their finances",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				app.Color = false
			}
		},
	}
	root.PersistentFlags().StringVar(&nowFlag, "now", "", "evaluate at this RFC 3339 instant instead of the current time")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	now := func() (time.Time, error) {
		if nowFlag == "" {
			if app.Clock != nil {
				return app.Clock(), nil
			}
			return time.Now(), nil
		}
		t, err := time.Parse(time.RFC3339, nowFlag)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --now %q: expected RFC 3339", nowFlag)
		}
		return t, nil
	}

	root.AddCommand(newUserCmd(app), newReportCmd(app, now))
	return root
}

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var req auth.RegisterRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.Auth.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			p := newPalette(app.Color)
			fmt.Fprintf(app.Out, "%s %s (%s)\n", p.ok.Render("created"), u.Username, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&req.Username, "username", "", "login name")
	create.Flags().StringVar(&req.Password, "password", "", "password, at least 8 characters")
	create.Flags().StringVar(&req.Email, "email", "", "contact email")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}

func newReportCmd(app *App, now func() (time.Time, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print evaluated views for a user",
	}

	var user string
	cmd.PersistentFlags().StringVar(&user, "user", "", "username or user id")
	_ = cmd.MarkPersistentFlagRequired("user")

	budgets := &cobra.Command{
		Use:   "budgets",
		Short: "Budget progress for the current period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := now()
			if err != nil {
				return err
			}
			u, err := resolveUser(cmd.Context(), app.Store, user)
			if err != nil {
				return err
			}
			statuses, err := app.Dashboard.BudgetStatuses(cmd.Context(), u.ID, at)
			if err != nil {
				return err
			}
			fmt.Fprint(app.Out, renderBudgets(newPalette(app.Color), statuses))
			return nil
		},
	}

	bills := &cobra.Command{
		Use:   "bills",
		Short: "Bills and subscriptions by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := now()
			if err != nil {
				return err
			}
			u, err := resolveUser(cmd.Context(), app.Store, user)
			if err != nil {
				return err
			}
			billStatuses, err := app.Dashboard.BillStatuses(cmd.Context(), u.ID, at)
			if err != nil {
				return err
			}
			subStatuses, err := app.Dashboard.SubscriptionStatuses(cmd.Context(), u.ID, at)
			if err != nil {
				return err
			}
			fmt.Fprint(app.Out, renderDue(newPalette(app.Color), dueRows(billStatuses, subStatuses)))
			return nil
		},
	}

	cmd.AddCommand(budgets, bills)
	return cmd
}

// resolveUser accepts a username first and falls back to an id.
func resolveUser(ctx context.Context, users ports.UserStore, ref string) (core.User, error) {
	u, err := users.GetUserByUsername(ctx, ref)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return core.User{}, err
	}
	u, err = users.GetUser(ctx, ref)
	if errors.Is(err, ports.ErrNotFound) {
		return core.User{}, fmt.Errorf("user %q not found", ref)
	}
	return u, err
}
