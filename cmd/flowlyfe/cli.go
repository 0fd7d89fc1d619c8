package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	"github.com/JesseBremer/flow-lyfe/internal/errors"
	"github.com/JesseBremer/flow-lyfe/internal/item"
	"github.com/JesseBremer/flow-lyfe/internal/notify"
	"github.com/JesseBremer/flow-lyfe/internal/ops"
	"github.com/JesseBremer/flow-lyfe/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, bus *notify.Bus, exportsDir string) *cli.App {
	app := &cli.App{
		Name:    "flowlyfe",
		Usage:   "Capture everything, triage later",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(db, cfg, bus),
			getCmd(db),
			listCmd(db),
			processCmd(db, bus),
			statusCmd(db, bus),
			surfaceCmd(db, cfg, bus),
			categorizeCmd(db, bus),
			clusterCmd(db),
			exportCmd(db, exportsDir),
			focusCmd(db),
			reflectCmd(db),
			webCmd(db, cfg, bus, exportsDir),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command.
func captureCmd(db *sql.DB, cfg *config.Config, bus *notify.Bus) *cli.Command {
	return &cli.Command{
		Name:      "capture",
		Usage:     "Capture a thought into the inbox (args or piped stdin)",
		ArgsUsage: "[content...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "text", Usage: "Capture type: text|voice|image|bill"},
		},
		Action: func(c *cli.Context) error {
			content := strings.Join(c.Args().Slice(), " ")
			if content == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				content = text
			}
			if strings.TrimSpace(content) == "" {
				return outputError(errors.NewInvalidRequest("content is required"))
			}

			it, err := ops.Capture(db, cfg, bus, ops.CaptureInput{
				Content: content,
				Type:    item.CaptureType(c.String("type")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(it)
		},
	}
}

// getCmd creates the get command.
func getCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch an item by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("item ID is required"))
			}

			it, err := ops.Get(db, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			return outputJSON(it)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List items by status, category, or anchors",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Lifecycle list: inbox|today|someday|awaiting|archived"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category filter"},
			&cli.Int64Flag{Name: "since", Usage: "Range start, unix seconds"},
			&cli.Int64Flag{Name: "until", Usage: "Range end, unix seconds"},
			&cli.BoolFlag{Name: "anchors", Usage: "List only anchor items"},
		},
		Action: func(c *cli.Context) error {
			var items []*item.Item
			var err error

			switch {
			case c.String("status") != "":
				items, err = ops.ListByStatus(db, item.Status(c.String("status")))
			case c.String("category") != "":
				items, err = ops.ListByCategory(db, item.Category(c.String("category")))
			case c.IsSet("since") && c.IsSet("until"):
				items, err = ops.ListByTimeRange(db, c.Int64("since"), c.Int64("until"))
			case c.Bool("anchors"):
				items, err = ops.ListAnchors(db)
			default:
				items, err = ops.ListByStatus(db, item.StatusInbox)
			}
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"items": items, "count": len(items)})
		},
	}
}

// processCmd creates the process command.
func processCmd(db *sql.DB, bus *notify.Bus) *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Triage an inbox item: categorize and move it to a list",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Explicit category (omit to keep or guess)"},
			&cli.StringFlag{Name: "to", Value: "today", Usage: "Target list: today|someday|awaiting|archived"},
			&cli.StringFlag{Name: "contact-name", Usage: "Contact name"},
			&cli.StringFlag{Name: "contact-phone", Usage: "Contact phone"},
			&cli.StringFlag{Name: "contact-email", Usage: "Contact email"},
			&cli.Int64Flag{Name: "event-date", Usage: "Event start, unix seconds"},
			&cli.Int64Flag{Name: "event-end", Usage: "Event end, unix seconds"},
			&cli.StringFlag{Name: "event-location", Usage: "Event location"},
			&cli.Float64Flag{Name: "bill-amount", Usage: "Amount due"},
			&cli.Int64Flag{Name: "bill-due", Usage: "Bill due date, unix seconds"},
			&cli.StringFlag{Name: "awaiting-from", Usage: "Who the item is waiting on"},
			&cli.StringFlag{Name: "awaiting-note", Usage: "Note about what is awaited"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("item ID is required"))
			}

			input := ops.ProcessInput{
				ID:           c.Args().First(),
				Category:     item.Category(c.String("category")),
				TargetStatus: item.Status(c.String("to")),
			}
			if v := c.String("contact-name"); v != "" {
				input.ContactName = &v
			}
			if v := c.String("contact-phone"); v != "" {
				input.ContactPhone = &v
			}
			if v := c.String("contact-email"); v != "" {
				input.ContactEmail = &v
			}
			if c.IsSet("event-date") {
				v := c.Int64("event-date")
				input.EventDate = &v
			}
			if c.IsSet("event-end") {
				v := c.Int64("event-end")
				input.EventEndDate = &v
			}
			if v := c.String("event-location"); v != "" {
				input.EventLocation = &v
			}
			if c.IsSet("bill-amount") {
				v := c.Float64("bill-amount")
				input.BillAmount = &v
			}
			if c.IsSet("bill-due") {
				v := c.Int64("bill-due")
				input.BillDueDate = &v
			}
			if v := c.String("awaiting-from"); v != "" {
				input.AwaitingFrom = &v
			}
			if v := c.String("awaiting-note"); v != "" {
				input.AwaitingNote = &v
			}

			it, err := ops.Process(db, bus, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(it)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(db *sql.DB, bus *notify.Bus) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Move an item to a lifecycle list",
		ArgsUsage: "<id> <status>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("item ID and status are required"))
			}

			it, err := ops.SetStatus(db, bus, c.Args().Get(0), item.Status(c.Args().Get(1)))
			if err != nil {
				return outputError(err)
			}

			return outputJSON(it)
		},
	}
}

// surfaceCmd creates the surface command.
func surfaceCmd(db *sql.DB, cfg *config.Config, bus *notify.Bus) *cli.Command {
	return &cli.Command{
		Name:      "surface",
		Usage:     "Resurface an item onto the today list",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("item ID is required"))
			}

			it, err := ops.Surface(db, cfg, bus, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			return outputJSON(it)
		},
	}
}

// categorizeCmd creates the categorize command.
func categorizeCmd(db *sql.DB, bus *notify.Bus) *cli.Command {
	return &cli.Command{
		Name:      "categorize",
		Usage:     "Set an item's category, or apply the keyword guess",
		ArgsUsage: "<id> [category]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("item ID is required"))
			}

			var it *item.Item
			var err error
			if c.NArg() >= 2 {
				it, err = ops.Categorize(db, bus, c.Args().Get(0), item.Category(c.Args().Get(1)))
			} else {
				it, err = ops.QuickCategorize(db, bus, c.Args().Get(0))
			}
			if err != nil {
				return outputError(err)
			}

			return outputJSON(it)
		},
	}
}

// clusterCmd creates the cluster command.
func clusterCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "cluster",
		Usage:     "Show a cluster and its member items, or list all clusters",
		ArgsUsage: "[id]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				clusters, err := ops.ListClusters(db)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(map[string]any{"clusters": clusters, "count": len(clusters)})
			}

			cluster, items, err := ops.ClusterItems(db, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"cluster": cluster, "items": items})
		},
	}
}

// exportCmd creates the export command with per-format subcommands.
func exportCmd(db *sql.DB, exportsDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export an item as vCard, iCalendar, or action links",
		Subcommands: []*cli.Command{
			{
				Name:      "vcard",
				Usage:     "Write a contact item as a .vcf file",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("item ID is required"))
					}
					out, err := ops.ExportContact(db, exportsDir, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(out)
				},
			},
			{
				Name:      "ical",
				Usage:     "Write an event item as a .ics file",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("item ID is required"))
					}
					out, err := ops.ExportEvent(db, exportsDir, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(out)
				},
			},
			{
				Name:      "links",
				Usage:     "Print the calendar/tel/sms/mailto links for an item",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("item ID is required"))
					}
					out, err := ops.Links(db, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(out)
				},
			},
		},
	}
}

// focusCmd creates the focus command with start/complete subcommands.
func focusCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "focus",
		Usage: "Timer sessions",
		Subcommands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Start a focus session",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "item", Aliases: []string{"i"}, Usage: "Item the session is for"},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "pomodoro", Usage: "Session type: pomodoro|flow"},
					&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Duration in minutes"},
				},
				Action: func(c *cli.Context) error {
					input := ops.StartFocusInput{
						Type:     item.FocusSessionType(c.String("type")),
						Duration: c.Int("duration"),
					}
					if v := c.String("item"); v != "" {
						input.ItemID = &v
					}

					fs, err := ops.StartFocus(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(fs)
				},
			},
			{
				Name:      "complete",
				Usage:     "Mark a focus session as completed",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("session ID is required"))
					}
					fs, err := ops.CompleteFocus(db, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(fs)
				},
			},
		},
	}
}

// reflectCmd creates the reflect command with add/list subcommands.
func reflectCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "reflect",
		Usage: "Daily reflection journal",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Record a reflection (args or piped stdin)",
				ArgsUsage: "[content...]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "processed", Usage: "Items triaged today"},
					&cli.IntFlag{Name: "completed", Usage: "Items finished today"},
				},
				Action: func(c *cli.Context) error {
					content := strings.Join(c.Args().Slice(), " ")
					if content == "" && stdinHasData() {
						text, err := readStdin()
						if err != nil {
							return outputError(errors.NewInternal(err))
						}
						content = text
					}

					r, err := ops.AddReflection(db, ops.AddReflectionInput{
						Content:        content,
						ItemsProcessed: c.Int("processed"),
						ItemsCompleted: c.Int("completed"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(r)
				},
			},
			{
				Name:  "list",
				Usage: "List reflections, newest first",
				Action: func(c *cli.Context) error {
					reflections, err := ops.ListReflections(db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"reflections": reflections, "count": len(reflections)})
				},
			},
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config, bus *notify.Bus, exportsDir string) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Run the local web view",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := cfg.WebBind
			if v := c.String("bind"); v != "" {
				bind = v
			}
			port := cfg.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv := web.NewServer(db, cfg, bus, exportsDir, Version, bind, port)
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if flowErr, ok := err.(*errors.FlowError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", flowErr.Code, flowErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
