// cmd/tools/bitable-schema/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"bitable-intake/internal/common/config"
	"bitable-intake/internal/common/lark"
	"bitable-intake/pkg/schema"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultTableKeys = "APPLICATIONS_TABLE_ID,VISIONARY_TABLE_ID,MENTOR_TABLE_ID,MENTOR_TOOLS_TABLE_ID"

// errNothingToDo maps to exit status 2, as do missing credentials.
var errNothingToDo = errors.New("no table IDs provided")

type options struct {
	envFile   string
	tableID   string
	appToken  string
	tableKeys string
	output    string
	format    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "bitable-schema",
		Short:         "List Lark Bitable fields and types",
		Long:          `Fetches the field list of the configured Bitable tables and writes it as markdown or JSON, or prints one table as tab separated lines.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.envFile, "vars", ".dev.vars", "Path to env vars file")
	f.StringVar(&opts.tableID, "table-id", "", "Bitable table ID; prints that table only")
	f.StringVar(&opts.appToken, "app-token", "", "Bitable app token (overrides BITABLE_APP_TOKEN)")
	f.StringVar(&opts.tableKeys, "table-keys", defaultTableKeys, "Comma-separated env keys for table IDs")
	f.StringVar(&opts.output, "output", "schema.md", "Output file")
	f.StringVar(&opts.format, "format", "markdown", "Output format: markdown or json")

	return cmd
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	if opts.envFile != "" {
		_ = godotenv.Load(opts.envFile)
	}
	if opts.appToken != "" {
		os.Setenv("BITABLE_APP_TOKEN", opts.appToken)
	}

	cfg, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	client := lark.NewClient(lark.NewConfig(cfg))
	token, err := client.TenantAccessToken(ctx)
	if err != nil {
		return err
	}

	if opts.tableID != "" {
		fields, err := client.ListFields(ctx, token, opts.tableID)
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, schema.RenderTSV(toSchemaFields(fields)))
		return err
	}

	tables, missing := resolveTables(cfg, opts.tableKeys, os.Getenv)
	if len(missing) > 0 {
		fmt.Fprintf(stderr, "Missing table IDs for: %s\n", strings.Join(missing, ", "))
	}
	if len(tables) == 0 {
		return errNothingToDo
	}

	for i := range tables {
		fields, err := client.ListFields(ctx, token, tables[i].ID)
		if err != nil {
			return fmt.Errorf("table %s: %w", tables[i].Key, err)
		}
		tables[i].Fields = toSchemaFields(fields)
	}

	switch opts.format {
	case "json":
		err = schema.SaveSnapshot(opts.output, &schema.Snapshot{
			AppToken:    cfg.Bitable.AppToken,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Tables:      tables,
		})
	case "markdown", "":
		err = os.WriteFile(opts.output, []byte(schema.RenderMarkdown(tables)), 0o644)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}

	fmt.Fprintf(stdout, "Wrote %s\n", opts.output)
	return nil
}

// resolveTables looks each key up in the loaded config first, then in the
// environment. Keys with no value are returned as missing.
func resolveTables(cfg *config.Config, keys string, getenv func(string) string) ([]schema.Table, []string) {
	known := map[string]string{
		"APPLICATIONS_TABLE_ID": cfg.Bitable.ApplicationsTableID,
		"VISIONARY_TABLE_ID":    cfg.Bitable.VisionaryTableID,
		"MENTOR_TABLE_ID":       cfg.Bitable.MentorTableID,
	}

	tables := []schema.Table{}
	var missing []string
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		id := known[key]
		if id == "" {
			id = getenv(key)
		}
		if id == "" {
			missing = append(missing, key)
			continue
		}
		tables = append(tables, schema.Table{Key: key, ID: id})
	}
	return tables, missing
}

func toSchemaFields(fields []lark.Field) []schema.Field {
	out := make([]schema.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, schema.Field{ID: f.FieldID, Name: f.FieldName, Type: f.Type, UIType: f.UIType})
	}
	return out
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errNothingToDo) || strings.Contains(err.Error(), "is required") {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
