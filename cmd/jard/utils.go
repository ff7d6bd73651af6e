// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/jarledger/jard/eventdb"
	"github.com/jarledger/jard/genesis"
	"github.com/jarledger/jard/health"
	"github.com/jarledger/jard/log"
	"github.com/jarledger/jard/lvldb"
)

const (
	// state cache entries per MiB of --cache
	stateEntriesPerMB = 1024

	// 2025-01-01T00:00:00Z, fixed so a persisted devnet can be reopened
	devnetLaunchTime = 1735689600

	maxClockOffset       = 5 * time.Second
	healthReportInterval = time.Minute
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	lvl := &slog.LevelVar{}
	lvl.Set(logLevel)

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandler(os.Stdout, lvl)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.TerminalHandler(os.Stderr, lvl, useColor)
	}
	log.SetDefault(handler)
	return lvl
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(devnetLaunchTime), nil
	}
	gene, err := genesis.Load(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "load genesis [%v]", path)
	}
	return gene, nil
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.jard")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.jard")
		default:
			return filepath.Join(home, ".org.jard")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}

	id, err := gene.ID()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("instance-%x", id.Bytes()[24:])

	instanceDir := filepath.Join(dataDir, name)
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

// openDatabases opens the state store and the event database side by side.
// An empty instanceDir keeps both in memory.
func openDatabases(instanceDir string, cacheMB int) (*lvldb.LevelDB, *eventdb.EventDB, error) {
	var (
		group   errgroup.Group
		mainDB  *lvldb.LevelDB
		eventDB *eventdb.EventDB
	)
	group.Go(func() (err error) {
		mainDB, err = openMainDB(instanceDir, cacheMB)
		return
	})
	group.Go(func() (err error) {
		eventDB, err = openEventDB(instanceDir)
		return
	})

	if err := group.Wait(); err != nil {
		if mainDB != nil {
			mainDB.Close()
		}
		if eventDB != nil {
			eventDB.Close()
		}
		return nil, nil, err
	}
	return mainDB, eventDB, nil
}

func openMainDB(instanceDir string, cacheMB int) (*lvldb.LevelDB, error) {
	if instanceDir == "" {
		return lvldb.NewMem()
	}

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

func openEventDB(instanceDir string) (*eventdb.EventDB, error) {
	if instanceDir == "" {
		return eventdb.NewMem()
	}
	dir := filepath.Join(instanceDir, "events.db")
	db, err := eventdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", dir)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

// stateCacheEntries gives the state read cache the half of cacheMB not taken by leveldb.
func stateCacheEntries(cacheMB int) int {
	return cacheMB / 2 * stateEntriesPerMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func checkClockOffset(context.Context) {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if offsetExceeded(resp.ClockOffset) {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

func offsetExceeded(offset time.Duration) bool {
	if offset < 0 {
		offset = -offset
	}
	return offset > maxClockOffset
}

func reportHealth(h *health.Health) {
	status := h.Status()
	if status.Healthy {
		return
	}
	ctx := []any{"failure", status.Failure}
	if status.LastFailure != nil {
		ctx = append(ctx, "since", common.PrettyDuration(time.Since(*status.LastFailure)))
	}
	logger.Warn("ledger unhealthy", ctx...)
}

func printStartupMessage(gene *genesis.Genesis, instanceDir, apiURL, metricsURL, adminURL string) {
	id, _ := gene.ID()
	if instanceDir == "" {
		instanceDir = "Memory"
	}
	fmt.Printf(`Starting %v
    Genesis       [ %v ]
    Launch time   [ %v ]
    Duration      [ %vs ]
    Instance dir  [ %v ]
    API portal    [ %v ]
    Metrics       [ %v ]
    Admin         [ %v ]
`,
		fullVersion(),
		id,
		time.Unix(int64(gene.LaunchTime), 0).UTC().Format(time.RFC3339),
		gene.RewardsDuration,
		instanceDir,
		apiURL,
		orDisabled(metricsURL),
		orDisabled(adminURL),
	)
}

func orDisabled(url string) string {
	if url == "" {
		return "Disabled"
	}
	return url
}
