package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"powerauthserver/database"
	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/services"
	"powerauthserver/utils"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Initialize 가 스키마까지 적용한다
			if _, _, err := setup(); err != nil {
				return err
			}
			defer database.Close()
			logger.Info("Database schema is up to date (driver=%s)", database.Type())
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		scopes  []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not configured")
			}
			if len(scopes) == 0 {
				scopes = utils.AllScopes
			}
			issuer := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
			token, expiresAt, err := issuer.GenerateToken(subject, scopes)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"token":      token,
				"expires_at": expiresAt,
				"scopes":     scopes,
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject (calling system name)")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "granted scopes (default: all)")
	return cmd
}

func appCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Manage applications",
	}

	var (
		name  string
		roles []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an application with its master key pair and first version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplications(func(ctx context.Context, apps services.ApplicationService) error {
				app, err := apps.Create(ctx, models.CreateApplicationRequest{Name: name, Roles: roles})
				if err != nil {
					return err
				}
				return printJSON(app)
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "application name")
	create.Flags().StringSliceVar(&roles, "role", nil, "application roles")
	_ = create.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplications(func(ctx context.Context, apps services.ApplicationService) error {
				list, err := apps.List(ctx)
				if err != nil {
					return err
				}
				return printJSON(list)
			})
		},
	}

	var callback models.CreateCallbackURLRequest
	addCallback := &cobra.Command{
		Use:   "callback",
		Short: "Register an activation status callback URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplications(func(ctx context.Context, apps services.ApplicationService) error {
				created, err := apps.CreateCallbackURL(ctx, callback)
				if err != nil {
					return err
				}
				return printJSON(created)
			})
		},
	}
	addCallback.Flags().Int64Var(&callback.ApplicationID, "app-id", 0, "application ID")
	addCallback.Flags().StringVar(&callback.Name, "name", "", "callback name")
	addCallback.Flags().StringVar(&callback.URL, "url", "", "callback URL")
	_ = addCallback.MarkFlagRequired("app-id")
	_ = addCallback.MarkFlagRequired("url")

	cmd.AddCommand(create, list, addCallback)
	return cmd
}

func withApplications(fn func(ctx context.Context, apps services.ApplicationService) error) error {
	if _, _, err := setup(); err != nil {
		return err
	}
	defer database.Close()
	db := services.NewSQLExecutor(database.DB, database.Type())
	return fn(context.Background(), services.NewApplicationService(db, utils.Now))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
