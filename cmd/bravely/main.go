package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amholt/bravely/internal/cli"
	"github.com/amholt/bravely/internal/config"
)

var CLI struct {
	Version kong.VersionFlag
	Verbose bool `short:"v" help:"Enable debug logging."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize the bravely state document."`
	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Log     cli.LogCmd     `cmd:"" help:"Log a brave action."`
	History cli.HistoryCmd `cmd:"" help:"Show logged actions, newest first."`
	Status  cli.StatusCmd  `cmd:"" help:"Show connection, level and XP."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run diagnostics."`
	Goal    struct {
		Show cli.GoalShowCmd `cmd:"" help:"Show the weekly goal." default:"1"`
		Set  cli.GoalSetCmd  `cmd:"" help:"Set or edit the weekly goal."`
		Bump cli.GoalBumpCmd `cmd:"" help:"Increment goal progress."`
	} `cmd:"" help:"Manage the weekly goal."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup of the state document." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore a backup."`
	} `cmd:"" help:"Manage state document backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bravely"),
		kong.Description("Gamified self-coaching tracker: log brave actions, earn XP, chase a weekly goal"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.3.1"},
	)

	cfg, cfgErr := config.Load()

	logger := newLogger(cfg, CLI.Verbose)
	defer logger.Sync()

	var confErr *config.ConfigError
	if errors.As(cfgErr, &confErr) {
		// Invalid store config downgrades to the local json fallback.
		logger.Warn("falling back to local store", zap.String("reason", confErr.Error()))
	}

	appCtx := &cli.Context{
		Config: cfg,
		Logger: logger,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config, verbose bool) *zap.Logger {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	if verbose || cfg.LogLevel == "debug" {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		// The TUI owns stdout; keep routine logs quiet.
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
