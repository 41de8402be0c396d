package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinicportal/portal/internal/core/service"
	"github.com/clinicportal/portal/internal/pkg/config"
	"github.com/clinicportal/portal/pkg/logger"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create indexes or schema for the configured store and optionally seed an admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("seed-admin-email")
			password, _ := cmd.Flags().GetString("seed-admin-password")
			name, _ := cmd.Flags().GetString("seed-admin-name")
			return runMigrate(cmd.Context(), email, password, name)
		},
	}
	cmd.Flags().String("seed-admin-email", "", "Create an admin account with this email")
	cmd.Flags().String("seed-admin-password", "", "Password for the seeded admin")
	cmd.Flags().String("seed-admin-name", "", "Display name for the seeded admin")
	return cmd
}

func runMigrate(ctx context.Context, email, password, name string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "portal-migrate"})

	// openStores applies indexes and schema as part of connecting.
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer st.Close(context.Background())
	fmt.Printf("Store %q is up to date.\n", cfg.StoreDriver)

	if email == "" {
		return nil
	}
	accounts := service.NewAccountService(st.users, nil, st.revoked, logger.Component("accounts"))
	admin, err := accounts.SeedAdmin(ctx, email, password, name)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	fmt.Printf("Seeded admin %s (%s).\n", admin.Email, admin.ID)
	return nil
}
