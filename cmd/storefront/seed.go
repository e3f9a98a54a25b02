package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/service"
	"github.com/sirpyerre/storefront/internal/infrastructure/config"
	mongodb "github.com/sirpyerre/storefront/internal/infrastructure/db/mongo"
)

func newSeedUserCmd() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "seed-user",
		Short: "Create a portal account in the self-hosted user store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := domain.Role(role)
			if !r.Valid() {
				return fmt.Errorf("invalid role %q: use %s or %s", role, domain.RoleAdmin, domain.RoleDistributor)
			}

			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(ctx) }()

			users := mongodb.NewAuthRepository(db)
			if err := mongodb.EnsureIndexes(ctx, users); err != nil {
				return err
			}

			u, err := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, nil).Register(ctx, name, email, password, r)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleDistributor), "admin or distribuidor")
	for _, f := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
