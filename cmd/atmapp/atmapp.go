// Package atmapp wires the ledger, its snapshot file and the console shell.
package atmapp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-atm/internal/atmshell"
	"github.com/go-petr/pet-atm/internal/domain"
	"github.com/go-petr/pet-atm/internal/ledger"
	"github.com/go-petr/pet-atm/internal/snapshotrepo"
	"github.com/go-petr/pet-atm/pkg/configpkg"
	"github.com/go-petr/pet-atm/pkg/moneypkg"
)

// App holds the ledger, the shell in front of it and the configuration.
type App struct {
	Ledger *ledger.Ledger
	Shell  *atmshell.Shell
	Repo   *snapshotrepo.RepoFile
	Config configpkg.Config

	out io.Writer
}

// New restores the ledger from config.SnapshotPath and builds the shell over in and out.
//
// An unreadable snapshot is reported to the user and the app starts with an
// empty ledger. Only failures to seed the demo account are returned.
func New(ctx context.Context, config configpkg.Config, in io.Reader, out io.Writer, opts ...atmshell.Option) (*App, error) {
	log := zerolog.Ctx(ctx)

	repo := snapshotrepo.NewRepoFile(config.SnapshotPath)

	l, err := ledger.Open(ctx, repo, ledger.WithAccountNumberAttempts(config.AccountNumberAttempts))
	if err != nil {
		log.Warn().Err(err).Str("path", repo.Path()).Msg("starting with an empty ledger")
		fmt.Fprintf(out, "Could not read data file %s, starting fresh.\n", repo.Path())
	}

	app := &App{
		Ledger: l,
		Shell:  atmshell.New(l, in, out, config, opts...),
		Repo:   repo,
		Config: config,
		out:    out,
	}

	if err := app.seedDemoAccount(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

// Run runs the shell until the user exits.
func (a *App) Run(ctx context.Context) error {
	return a.Shell.Run(ctx)
}

func (a *App) seedDemoAccount(ctx context.Context) error {
	if !a.Config.SeedDemoAccount || len(a.Ledger.ListAccounts(ctx)) > 0 {
		return nil
	}

	deposit, err := moneypkg.Parse(a.Config.DemoInitialDeposit)
	if err != nil {
		return fmt.Errorf("demo initial deposit %q: %w", a.Config.DemoInitialDeposit, err)
	}

	info, err := a.Ledger.CreateAccount(ctx, a.Config.DemoHolderName, deposit, a.Config.DemoPin)
	if err != nil && !errors.Is(err, domain.ErrSnapshotWrite) {
		return fmt.Errorf("seed demo account: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("account", info.ID).Msg("demo account created")
	fmt.Fprintf(a.out, "Demo account created. Account Number: %s PIN: %s\n", info.ID, a.Config.DemoPin)

	return nil
}
