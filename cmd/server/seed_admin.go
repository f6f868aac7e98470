package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type seedAdminOptions struct {
	email    string
	password string
	tenant   string
}

func newSeedAdminCmd() *cobra.Command {
	var opts seedAdminOptions

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create or reset an administrator holding every permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := parseTenant(opts.tenant)
			if err != nil {
				return err
			}

			cfg, log, err := initializeApp()
			if err != nil {
				return err
			}

			app, err := newApplication(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer app.cleanup()

			return seedAdmin(cmd.Context(), app.userService, tenantID, opts, log)
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "administrator email (required)")
	cmd.Flags().StringVar(&opts.password, "password", "", "administrator password (required)")
	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "tenant ID; empty seeds a host administrator")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func parseTenant(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --tenant %q: %w", raw, err)
	}
	return &id, nil
}

// seedAdmin grants every defined permission to the account, creating it when
// it does not exist. Running it twice is harmless.
func seedAdmin(
	ctx context.Context,
	users service.UserService,
	tenantID *uuid.UUID,
	opts seedAdminOptions,
	log *slog.Logger,
) error {
	user, created, err := users.EnsureUser(ctx, tenantID, opts.email, opts.password, domain.AllPermissions())
	if err != nil {
		return err
	}

	action := "updated"
	if created {
		action = "created"
	}
	log.Info("administrator "+action,
		"user_id", user.ID,
		"tenant_id", tenantID,
		"permissions", len(user.Permissions))
	return nil
}
