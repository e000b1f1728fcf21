package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"tempo/internal/app"
	logx "tempo/pkg/logx"
)

var version = "dev"

func main() {
	cliApp := cli.App{
		Name:    "tempo",
		Usage:   "schedule jobs on a polling clock and report how they ran",
		Version: version,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "config, c",
				Value: "./tempo.yaml",
				Usage: "path to config file (yaml or json)",
			},
		},
		Commands: []cli.Command{
			{
				Name:   "run",
				Usage:  "register the configured jobs, let them fire, print timing reports",
				Action: runCmd,
				Flags: []cli.Flag{
					cli.BoolFlag{Name: "color", Usage: "colorize report headers"},
					cli.BoolFlag{Name: "watch", Usage: "hot-reload config while running"},
				},
			},
			{
				Name:   "history",
				Usage:  "print stored firing records",
				Action: historyCmd,
				Flags: []cli.Flag{
					cli.StringFlag{Name: "name, n", Usage: "filter by job name"},
					cli.IntFlag{Name: "limit, l", Value: 20, Usage: "max records"},
					cli.BoolFlag{Name: "color", Usage: "colorize table header"},
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tempo: %s\n", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runCmd(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := app.New(c.GlobalString("config"))
	if err != nil {
		return err
	}
	defer a.Close()

	if c.Bool("watch") {
		a.Watch(ctx)
	}

	summary, err := a.Run(ctx, os.Stdout, c.Bool("color"))
	if err != nil {
		return err
	}
	a.Log().Info("run finished",
		logx.Int("fired", summary.Fired),
		logx.Int("failed", summary.Failed),
		logx.Int("skipped", summary.Skipped),
		logx.Float64("mean_skew_s", summary.MeanSkew),
	)
	if summary.Failed > 0 {
		return fmt.Errorf("%d job(s) failed", summary.Failed)
	}
	return nil
}

func historyCmd(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := app.New(c.GlobalString("config"))
	if err != nil {
		return err
	}
	defer a.Close()

	return a.History(ctx, os.Stdout, c.String("name"), c.Int("limit"), c.Bool("color"))
}
