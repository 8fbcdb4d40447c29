package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"quillpress/internal/apperr"
	"quillpress/internal/config"
	"quillpress/internal/database"
	"quillpress/internal/models"
	"quillpress/internal/service"
	"quillpress/internal/store"
)

// openDB connects to the database configured in the environment.
func openDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.StoreDriver != config.DriverPostgres {
		return nil, fmt.Errorf("STORE_DRIVER is %q; database commands need %q", cfg.StoreDriver, config.DriverPostgres)
	}
	return database.Connect(ctx, cfg.DSN())
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
			v, err := database.MigrationVersion(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", v)
			return nil
		},
	}
}

// NewPromoteCommand creates the promote command.
func NewPromoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Short: "Give an existing account the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			email := strings.ToLower(strings.TrimSpace(args[0]))
			ok, err := store.NewUserStore(db).SetRole(ctx, email, models.RoleAdmin)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no user with email %s", email)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", email)
			return nil
		},
	}
}

// seedFile is the YAML fixture read by the seed command.
type seedFile struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"categories"`
}

// parseSeedFile decodes a fixture, rejecting unknown keys and unnamed
// categories.
func parseSeedFile(r io.Reader) (*seedFile, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, c := range f.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("parse seed file: category %d has no name", i+1)
		}
	}
	return &f, nil
}

// seedCategories creates every category of f as author. Categories that
// already exist are reported and skipped.
func seedCategories(ctx context.Context, w io.Writer, svc *service.Categories, author *models.Principal, f *seedFile) (int, error) {
	created := 0
	for _, c := range f.Categories {
		in := service.CategoryInput{Name: &c.Name}
		if c.Description != "" {
			in.Description = &c.Description
		}
		cat, err := svc.Create(ctx, author, in)
		switch {
		case apperr.Is(err, apperr.KindConflict):
			fmt.Fprintf(w, "skip %q: already exists\n", c.Name)
		case err != nil:
			return created, fmt.Errorf("seed %q: %w", c.Name, err)
		default:
			created++
			fmt.Fprintf(w, "created %q (%s)\n", cat.Name, cat.Slug)
		}
	}
	return created, nil
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	var file, authorEmail string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create categories from a YAML fixture",
		Long: `Create categories from a YAML fixture of the form:

  categories:
    - name: Tech
      description: Software and hardware`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()
			fixture, err := parseSeedFile(fh)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			u, err := store.NewUserStore(db).FindByEmail(ctx, strings.ToLower(strings.TrimSpace(authorEmail)))
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("no user with email %s", authorEmail)
			}

			svc := service.NewCategories(store.NewCategoryStore(db))
			n, err := seedCategories(ctx, cmd.OutOrStdout(), svc, u.Principal(), fixture)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d categories created\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file")
	cmd.Flags().StringVar(&authorEmail, "author", "", "email of the account that owns the categories")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("author")

	return cmd
}
