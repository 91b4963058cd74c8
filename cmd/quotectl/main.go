// Package main provides quotectl, an operator CLI over the local quote store.
//
// quotectl opens the same SQLite database as the service, so it should not
// run against a store the service is writing to at the same time.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Version is injected via ldflags.
var Version = "dev"

func main() {
	root, e := newRootCmd(os.Stdout, os.Stderr)
	if err := execute(context.Background(), root, e); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// execute runs root and releases the store whatever the command returned.
// Cobra skips post-run hooks after a failed RunE, so closing happens here.
func execute(ctx context.Context, root *cobra.Command, e *env) error {
	err := root.ExecuteContext(ctx)

	return errors.Join(err, e.close())
}

// env holds the resources shared by every subcommand. It is populated by the
// root command's PersistentPreRunE and released by execute.
type env struct {
	// flags
	configFile string
	profile    string
	dbPath     string
	verbose    bool

	out    io.Writer
	errOut io.Writer

	cfg     *config.Config
	logger  *slog.Logger
	store   *sqlite.Store
	client  *acl.QuoteClient
	service *app.QuoteService
}

func newRootCmd(out, errOut io.Writer) (*cobra.Command, *env) {
	e := &env{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Manage the quote-sync repository from the command line",
		Long: `quotectl reads and edits the local quote repository used by the
quote-sync service, and can run a reconciliation pass against the remote
quote source.

Example:
  quotectl list --category Life
  quotectl add --text "Stay curious." --category Learning
  quotectl export backup.json`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: e.open,
	}

	root.SetOut(out)
	root.SetErr(errOut)

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	flags := root.PersistentFlags()
	flags.StringVar(&e.configFile, "config", "", "additional YAML config file")
	flags.StringVar(&e.profile, "profile", profile, "config profile (configs/{profile}.yaml)")
	flags.StringVar(&e.dbPath, "db", "", "SQLite database path (default: storage.path)")
	flags.BoolVarP(&e.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newListCmd(e),
		newAddCmd(e),
		newRandomCmd(e),
		newCategoriesCmd(e),
		newSelectCmd(e),
		newImportCmd(e),
		newExportCmd(e),
		newSyncCmd(e),
	)

	return root, e
}

// open loads configuration and opens the store and the quote service.
func (e *env) open(cmd *cobra.Command, _ []string) error {
	var extra []string
	if e.configFile != "" {
		extra = append(extra, e.configFile)
	}

	cfg, err := config.Load(e.profile, extra...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if e.dbPath != "" {
		cfg.Storage.Path = e.dbPath
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level := "warn"
	if e.verbose {
		level = "debug"
	}

	e.cfg = cfg
	e.logger = logging.NewWithWriter(&logging.Config{
		Level:   level,
		Format:  "pretty",
		Service: "quotectl",
		Version: Version,
	}, e.errOut)

	ctx := logging.WithContext(cmd.Context(), e.logger)
	cmd.SetContext(ctx)

	e.store, err = sqlite.Open(ctx, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	if err := e.openService(ctx); err != nil {
		return errors.Join(err, e.close())
	}

	return nil
}

// openService builds the quote client and loads the repository from the store.
func (e *env) openService(ctx context.Context) error {
	cfg := e.cfg

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		UserAgent:   "quotectl/" + Version,
		Logger:      e.logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	e.client = acl.NewQuoteClient(acl.QuoteClientConfig{
		Client:   httpClient,
		Category: cfg.Sync.Category,
		Logger:   e.logger,
	})

	var publisher ports.QuotePublisher
	if cfg.Sync.Publish {
		publisher = e.client
	}

	e.service = app.NewQuoteService(app.QuoteServiceConfig{
		Store:     e.store,
		Session:   memory.NewStore(),
		Publisher: publisher,
		Logger:    e.logger,
	})

	if err := e.service.Init(ctx); err != nil {
		return fmt.Errorf("loading quotes: %w", err)
	}

	return nil
}

func (e *env) close() error {
	if e.store == nil {
		return nil
	}

	err := e.store.Close()
	e.store = nil

	if err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	return nil
}
