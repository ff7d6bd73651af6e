// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/jarledger/jard/api"
	"github.com/jarledger/jard/cmd/jard/httpserver"
	"github.com/jarledger/jard/co"
	"github.com/jarledger/jard/health"
	"github.com/jarledger/jard/log"
	"github.com/jarledger/jard/metrics"
	"github.com/jarledger/jard/runtime"
	"github.com/jarledger/jard/state"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	return &cli.App{
		Version:   fullVersion(),
		Name:      "Jard",
		Usage:     "Proportional reward distribution ledger",
		Copyright: "2025 The VeChainThor developers",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			memoryFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEventsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			ntpCheckIntervalFlag,
		},
		Action: defaultAction,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var instanceDir string
	if !ctx.Bool(memoryFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
	}

	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	mainDB, eventDB, err := openDatabases(instanceDir, cacheMB)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	stater := state.NewStater(mainDB, stateCacheEntries(cacheMB))
	applied, err := gene.Apply(stater)
	if err != nil {
		return err
	}
	if !applied {
		logger.Info("genesis already applied")
	}

	rt, err := runtime.New(stater, eventDB, runtime.WallClock{})
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing runtime..."); rt.Close() }()

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeAPI := api.New(rt, eventDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		EnableMetrics:        metrics.Enabled(),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: ctx.Duration(apiSlowQueriesThresholdFlag.Name),
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})
	defer closeAPI()

	apiURL, stopAPI, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	metricsURL := ""
	if metrics.Enabled() {
		url, stop, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); stop() }()
		metricsURL = url
	}

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, rt.Health(), apiLogs)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); stop() }()
		adminURL = url
	}

	printStartupMessage(gene, instanceDir, apiURL, metricsURL, adminURL)

	return run(exitSignal, rt.Health(), ctx.Duration(ntpCheckIntervalFlag.Name))
}

// run blocks until ctx is done, running housekeeping in the meantime.
func run(ctx context.Context, h *health.Health, ntpInterval time.Duration) error {
	var goes co.Goes
	if ntpInterval > 0 {
		goes.Every(ctx, ntpInterval, checkClockOffset)
	}
	goes.Every(ctx, healthReportInterval, func(context.Context) { reportHealth(h) })

	<-ctx.Done()
	goes.Wait()
	return nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
