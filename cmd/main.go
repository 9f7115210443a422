// Package main runs the console ATM.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-atm/cmd/atmapp"
	"github.com/go-petr/pet-atm/internal/atmshell"
	"github.com/go-petr/pet-atm/internal/logger"
	"github.com/go-petr/pet-atm/pkg/configpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	l := logger.New(config)
	ctx := l.WithContext(context.Background())

	var opts []atmshell.Option
	if pins, ok := atmshell.NewTerminalPinReader(os.Stdin, os.Stdout); ok {
		opts = append(opts, atmshell.WithPinReader(pins))
	}

	app, err := atmapp.New(ctx, config, os.Stdin, os.Stdout, opts...)
	if err != nil {
		l.Fatal().Err(err).Msg("cannot start atm")
	}

	l.Info().Str("snapshot", config.SnapshotPath).Msg("ATM HAS STARTED")

	if err := app.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("atm stopped")
	}
}
