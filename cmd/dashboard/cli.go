package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/mcp"
	"github.com/anytrip/dashboard/internal/ops"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
	"github.com/anytrip/dashboard/internal/web"
)

// deps holds what every command needs. The app's Before hook fills it from
// the data directory unless a backend was injected.
type deps struct {
	cfg     *config.Config
	backend store.Backend
	owned   bool // backend opened by Before, closed by After
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d *deps) *cli.App {
	app := &cli.App{
		Name:           "dashboard",
		Usage:          "Record service for excel sheets, website links and tasks",
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Aliases: []string{"d"}, Value: "data", EnvVars: []string{"DATA_DIR"}, Usage: "Directory holding config.json and stored collections"},
			&cli.StringFlag{Name: "storage", EnvVars: []string{"STORAGE_BACKEND"}, Usage: "Storage backend: memory|json|sqlite"},
		},
		Before: func(c *cli.Context) error {
			if d.backend != nil || c.Args().First() == "help" {
				return nil
			}
			return d.open(c.String("data-dir"), c.String("storage"))
		},
		After: func(c *cli.Context) error {
			if d.owned {
				d.owned = false
				return d.backend.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(d),
			mcpCmd(d),
			listCmd(d),
			getCmd(d),
			addCmd(d),
			updateCmd(d),
			deleteCmd(d),
			searchCmd(d),
			statsCmd(d),
			healthCmd(d),
			clearCmd(d),
			exportCmd(d),
			importCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// open loads config from dataDir plus the environment and opens the backend.
func (d *deps) open(dataDir, storage string) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg, err := config.LoadWithEnv(dataDir, os.Getenv)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if storage != "" {
		cfg.Storage = storage
	}
	backend, err := store.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend(), err)
	}
	d.cfg, d.backend, d.owned = cfg, backend, true
	return nil
}

// serveCmd creates the serve command, the default.
func serveCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Bind address (default from config, 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default from config, 5000)"},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("host") {
				d.cfg.Bind = c.String("host")
			}
			if c.IsSet("port") {
				d.cfg.Port = c.Int("port")
			}
			return web.Run(web.NewServer(d.backend, d.cfg, Version))
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the record tools over MCP stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(d.backend, d.cfg, Version)
		},
	}
}

// filterFlags are shared by list and search.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Text matched against name, description, url and tags"},
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Exact category"},
		&cli.StringFlag{Name: "status", Usage: "pending|completed|inactive"},
		&cli.BoolFlag{Name: "pinned", Usage: "Only pinned records (--pinned=false for unpinned)"},
		&cli.StringFlag{Name: "tag", Usage: "Records carrying this tag"},
	}
}

func filterFromFlags(c *cli.Context) record.Filter {
	f := record.Filter{
		Query:    c.String("query"),
		Category: c.String("category"),
		Status:   record.Status(c.String("status")),
		Tag:      c.String("tag"),
	}
	if c.IsSet("pinned") {
		v := c.Bool("pinned")
		f.Pinned = &v
	}
	return f
}

// recordFlags are shared by add and update.
func recordFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Record name"},
		&cli.StringFlag{Name: "description", Usage: "Description (markdown)"},
		&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "URL (sheets and links)"},
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category"},
		&cli.StringFlag{Name: "status", Usage: "pending|completed|inactive"},
		&cli.BoolFlag{Name: "pinned", Usage: "Pin the record"},
		&cli.StringFlag{Name: "priority", Usage: "low|medium|high (tasks)"},
		&cli.StringFlag{Name: "due", Usage: "Due date (tasks); empty clears it on update"},
		&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
	}
}

// listCmd creates the list command.
func listCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List a collection, newest first",
		ArgsUsage: "[options] <collection>",
		Flags:     filterFlags(),
		Action: func(c *cli.Context) error {
			kind, err := collectionArg(c, 0)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.List(c.Context, d.backend, ops.ListInput{Kind: kind, Filter: filterFromFlags(c)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// getCmd creates the get command.
func getCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a record by id",
		ArgsUsage: "[options] <collection> <id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Add descriptionHtml rendered from the description"},
		},
		Action: func(c *cli.Context) error {
			kind, err := collectionArg(c, 0)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Fetch(c.Context, d.backend, ops.FetchInput{
				Kind:           kind,
				ID:             c.Args().Get(1),
				RenderMarkdown: c.Bool("markdown"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// addCmd creates the add command.
func addCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a record at the head of a collection",
		ArgsUsage: "[options] <collection>",
		Flags:     recordFlags(),
		Action: func(c *cli.Context) error {
			kind, err := collectionArg(c, 0)
			if err != nil {
				return outputError(err)
			}

			draft := record.Draft{
				Name:        c.String("name"),
				Description: c.String("description"),
				URL:         c.String("url"),
				Category:    c.String("category"),
				Status:      record.Status(c.String("status")),
				IsPinned:    c.Bool("pinned"),
				Priority:    record.Priority(c.String("priority")),
				Tags:        parseTags(c.String("tags")),
			}
			if c.IsSet("due") {
				due := c.String("due")
				draft.DueDate = &due
			}

			output, err := ops.Create(c.Context, d.backend, ops.CreateInput{Kind: kind, Draft: draft})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// updateCmd creates the update command. Only flags given on the command line change.
func updateCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update fields of a record",
		ArgsUsage: "[options] <collection> <id>",
		Flags:     recordFlags(),
		Action: func(c *cli.Context) error {
			kind, err := collectionArg(c, 0)
			if err != nil {
				return outputError(err)
			}

			var patch record.Patch
			if c.IsSet("name") {
				patch.Name = stringPtr(c.String("name"))
			}
			if c.IsSet("description") {
				patch.Description = stringPtr(c.String("description"))
			}
			if c.IsSet("url") {
				patch.URL = stringPtr(c.String("url"))
			}
			if c.IsSet("category") {
				patch.Category = stringPtr(c.String("category"))
			}
			if c.IsSet("status") {
				s := record.Status(c.String("status"))
				patch.Status = &s
			}
			if c.IsSet("pinned") {
				v := c.Bool("pinned")
				patch.IsPinned = &v
			}
			if c.IsSet("priority") {
				p := record.Priority(c.String("priority"))
				patch.Priority = &p
			}
			if c.IsSet("due") {
				if due := c.String("due"); due == "" {
					patch.DueDate = record.Null[string]()
				} else {
					patch.DueDate = record.Some(due)
				}
			}
			if c.IsSet("tags") {
				tags := parseTags(c.String("tags"))
				patch.Tags = &tags
			}
			if patch.IsEmpty() {
				return outputError(errors.NewInvalidRequest("no fields to update"))
			}

			output, err := ops.Update(c.Context, d.backend, ops.UpdateInput{
				Kind:  kind,
				ID:    c.Args().Get(1),
				Patch: patch,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a record",
		ArgsUsage: "[options] <collection> <id>",
		Action: func(c *cli.Context) error {
			kind, err := collectionArg(c, 0)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Delete(c.Context, d.backend, ops.DeleteInput{Kind: kind, ID: c.Args().Get(1)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search collections with one filter",
		Flags: append(filterFlags(),
			&cli.StringFlag{Name: "collections", Usage: "Comma-separated collections (default: all)"},
		),
		Action: func(c *cli.Context) error {
			kinds, err := parseCollections(c.String("collections"))
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Search(c.Context, d.backend, ops.SearchInput{Filter: filterFromFlags(c), Kinds: kinds})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show dashboard counters",
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(c.Context, d.backend)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// healthCmd creates the health command.
func healthCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Show storage backend and per-collection counts",
		Action: func(c *cli.Context) error {
			output, err := ops.Health(c.Context, d.backend)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every record in every collection",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("refusing to clear without --yes"))
			}

			output, err := ops.ClearAll(c.Context, d.backend)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export collections to JSONL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Output path (default: <data-dir>/exports/dashboard-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "collections", Usage: "Comma-separated collections (default: all)"},
		},
		Action: func(c *cli.Context) error {
			kinds, err := parseCollections(c.String("collections"))
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Export(c.Context, d.backend, d.cfg, ops.ExportInput{
				Path:  c.String("path"),
				Kinds: kinds,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import records from JSONL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "Input path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Import mode: error|replace|skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, d.backend, d.cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// Helper functions

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	dErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", dErr.Code, dErr.Message), 1)
}

// collectionArg resolves the positional collection argument at index i.
func collectionArg(c *cli.Context, i int) (record.Kind, error) {
	name := c.Args().Get(i)
	if name == "" {
		return "", errors.NewInvalidRequest("collection is required (excel-sheets, website-links, tasks)")
	}
	kind, ok := record.ParseKind(name)
	if !ok {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown collection %q", name))
	}
	return kind, nil
}

// parseCollections resolves a comma-separated collection list.
func parseCollections(s string) ([]record.Kind, error) {
	var kinds []record.Kind
	for _, name := range parseTags(s) {
		kind, ok := record.ParseKind(name)
		if !ok {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown collection %q", name))
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func stringPtr(s string) *string { return &s }
