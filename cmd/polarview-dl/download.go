package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/polarview-downloader/internal/config"
	"github.com/handiism/polarview-downloader/internal/download"
	"github.com/handiism/polarview-downloader/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
)

func downloadAction(c *cli.Context) error {
	settings, logger, err := setup(c)
	if err != nil {
		return cli.NewExitError(err.Error(), exitFailure)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := c.App.Writer
	fmt.Fprintln(out, "PolarView Sentinel-1 Downloader")
	fmt.Fprintln(out)

	events := make(chan any, 64)
	render := newRenderer(out, c.Bool("verbose"))

	var g errgroup.Group
	g.Go(func() error {
		render.run(events)
		return nil
	})
	g.Go(func() error {
		defer close(events)
		_, err := runDownload(ctx, settings, logger, events)
		return err
	})

	return queryExitError(ctx, c, g.Wait())
}

// queryError marks a failed metadata query. It has already been reported
// to the user by the manager.
type queryError struct {
	err error
}

func (e *queryError) Error() string { return e.err.Error() }
func (e *queryError) Unwrap() error { return e.err }

// queryExitError ends the run normally after a failed query unless
// --fail-on-query-error is set. Interrupts and other errors go through
// exitError.
func queryExitError(ctx context.Context, c *cli.Context, err error) error {
	var qe *queryError
	if errors.As(err, &qe) && ctx.Err() == nil && !c.Bool("fail-on-query-error") {
		return nil
	}
	return exitError(ctx, err)
}

// runDownload queries and downloads one batch, forwarding progress to events.
func runDownload(ctx context.Context, settings *config.Settings, logger *zap.Logger, events chan<- any) (*model.Report, error) {
	manager := download.NewManager(settings,
		func(e download.ProgressEvent) { events <- e },
		download.WithLogger(logger),
		download.WithFileProgress(func(p download.FileProgress) {
			select {
			case events <- p:
			default:
			}
		}),
	)

	if err := manager.Initialize(ctx); err != nil {
		return nil, &queryError{err: err}
	}
	return manager.StartDownloads(ctx)
}

func queryAction(c *cli.Context) error {
	settings, logger, err := setup(c)
	if err != nil {
		return cli.NewExitError(err.Error(), exitFailure)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render := newRenderer(c.App.ErrWriter, c.Bool("verbose"))
	manager := download.NewManager(settings, render.event, download.WithLogger(logger))

	if err := manager.Initialize(ctx); err != nil {
		return queryExitError(ctx, c, &queryError{err: err})
	}
	for _, link := range manager.Links() {
		fmt.Fprintln(c.App.Writer, link)
	}
	return nil
}

func configAction(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return cli.NewExitError(err.Error(), exitFailure)
	}

	if path := c.String("save"); path != "" {
		if err := settings.Save(path); err != nil {
			return cli.NewExitError(fmt.Sprintf("save config: %v", err), exitFailure)
		}
		fmt.Fprintf(c.App.ErrWriter, "Saved configuration to %s\n", path)
	}

	data, err := settings.Marshal()
	if err != nil {
		return cli.NewExitError(err.Error(), exitFailure)
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func versionAction(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "polarview-dl %s\n", version)
	return nil
}

func setup(c *cli.Context) (*config.Settings, *zap.Logger, error) {
	settings, err := loadSettings(c)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newRunLogger(c, settings)
	if err != nil {
		return nil, nil, err
	}
	return settings, logger, nil
}

// exitError maps a run error to the process exit code: 130 when the run
// was interrupted, 1 for every other error. Per-scene failures never
// reach this point, and query failures only with --fail-on-query-error.
func exitError(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil || model.IsKind(err, model.KindCanceled):
		return cli.NewExitError("Download cancelled.", exitInterrupted)
	default:
		return cli.NewExitError(fmt.Sprintf("Error: %v", err), exitFailure)
	}
}
