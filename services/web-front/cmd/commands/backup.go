package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/config"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/storage"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/spf13/cobra"
)

const (
	envAdminUser     = "GUESTBOOK_ADMIN_USER"
	envAdminPassword = "GUESTBOOK_ADMIN_PASSWORD"
)

type credentials struct {
	username string
	password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.username, "username", os.Getenv(envAdminUser), "admin username (env "+envAdminUser+")")
	cmd.Flags().StringVar(&c.password, "password", os.Getenv(envAdminPassword), "admin password (env "+envAdminPassword+")")
}

// login opens a throwaway workspace and signs the admin in.
func (c *credentials) login(ctx context.Context, cfg *config.WebConfig, log *logger.Logger) (*workspace.Workspace, error) {
	if c.username == "" || c.password == "" {
		return nil, errors.New("admin credentials required: use --username/--password or " + envAdminUser + "/" + envAdminPassword)
	}
	ws := workspace.New("cli", cfg, storage.NewMemory(), log)
	ws.Visit("/admin")
	if !ws.Auth.Login(ctx, domain.LoginForm{Username: c.username, Password: c.password}) {
		msg := ws.Auth.Error()
		ws.Close()
		return nil, fmt.Errorf("login failed: %s", msg)
	}
	return ws, nil
}

// NewExportCommand creates the command that downloads a full export.
func NewExportCommand() *cobra.Command {
	var (
		creds  credentials
		out    string
		legacy bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download reviews and comments as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := setup()
			ctx := cmd.Context()
			ws, err := creds.login(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer ws.Close()

			var (
				body []byte
				name string
			)
			if legacy {
				body, name, err = ws.Backup.ExportLegacy(ctx)
			} else {
				var data *domain.FullExport
				if data, name, err = ws.Backup.ExportFull(ctx); err == nil {
					body, err = json.MarshalIndent(data, "", "  ")
				}
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return err
			}
			log.Infof("export written to %s", out)
			return nil
		},
	}
	creds.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: dated file name)")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "export reviews only")
	return cmd
}

// NewImportCommand creates the command that restores an export file.
func NewImportCommand() *cobra.Command {
	var (
		creds   credentials
		file    string
		replace bool
		reviews bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore reviews and comments from a JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			cfg, log := setup()
			ctx := cmd.Context()
			ws, err := creds.login(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer ws.Close()

			if reviews {
				res, err := ws.Backup.ImportReviews(ctx, raw)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d reviews\n", res.ImportedCount)
				return nil
			}
			res, err := ws.Backup.ImportFull(ctx, raw, replace)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d reviews, %d comments\n", res.ImportedReviews, res.ImportedComments)
			for _, e := range res.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), "  "+e)
			}
			return nil
		},
	}
	creds.bind(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "export file to import")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace existing reviews and comments")
	cmd.Flags().BoolVar(&reviews, "reviews", false, "file is a review-only export")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
