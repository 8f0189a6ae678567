package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hray3182/daybook/internal/config"
	"github.com/hray3182/daybook/internal/ics"
	"github.com/hray3182/daybook/internal/web"
)

func addMigrate(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := db.Migrate(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				_, _ = fmt.Fprintln(color.Output, color.New(color.Faint).Sprint("Database is up to date"))
				return nil
			}
			for _, name := range applied {
				_, _ = fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("applied"), name)
			}
			return nil
		},
	})
}

func addToken(root *cobra.Command) {
	var (
		userID int64
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a user",
		Example: `
daybook token --user 1
daybook token --user 1 --ttl 720h
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			auth, err := web.NewAuth(cfg.JWTSecret)
			if err != nil {
				return err
			}
			token, err := auth.Issue(userID, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User the token is issued to.")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "How long the token stays valid.")
	_ = cmd.MarkFlagRequired("user")

	root.AddCommand(cmd)
}

func addImportICS(root *cobra.Command) {
	var (
		userID  int64
		file    string
		source  string
		isPlan  bool
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "import-ics",
		Short: "Import a calendar file into a user's days",
		Example: `
daybook import-ics --user 1 --file work.ics --source work --plan
curl -s https://example.com/cal.ics | daybook import-ics --user 1 --file - --replace
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			body, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if source == "" {
				source = file
			}

			ctx := cmd.Context()
			be, err := openBackend(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer be.close()

			from, to := ics.Window(time.Now())
			events, err := ics.Events(body, from, to, be.planner.Location(), isPlan)
			if err != nil {
				return err
			}

			importFn := be.planner.ImportEvents
			if replace {
				importFn = be.planner.ReplaceSource
			}
			imp, err := importFn(ctx, userID, source, isPlan, events)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(color.Output, "%s %d events from %s (import %s)\n",
				color.GreenString("imported"), imp.EventCount, source, color.New(color.Faint).Sprint(imp.ImportID))
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User to import into.")
	cmd.Flags().StringVar(&file, "file", "", `Calendar file to read, "-" for stdin.`)
	cmd.Flags().StringVar(&source, "source", "", "Name recorded for the import. Defaults to the file name.")
	cmd.Flags().BoolVar(&isPlan, "plan", false, "Import into the plan column instead of the actual log.")
	cmd.Flags().BoolVar(&replace, "replace", false, "Remove events of earlier imports with the same source.")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")

	root.AddCommand(cmd)
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	body, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return body, nil
}
