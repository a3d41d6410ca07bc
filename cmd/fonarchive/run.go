package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fonarchive/internal/account"
	"fonarchive/internal/config"
	"fonarchive/internal/failures"
	"fonarchive/internal/logging"
	"fonarchive/internal/pipeline"
	"fonarchive/internal/progress"
	"fonarchive/internal/prompt"
)

type runOptions struct {
	outputDir string
	sourceDir string
	yes       bool
}

func runArchive(cmd *cobra.Command, cctx *commandContext, opts runOptions) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}
	if opts.yes {
		cfg.Prompts.AssumeYes = true
	}

	logDir := cfg.RunLogDir()
	runLog, err := logging.OpenRunLog(logDir, time.Now(), cfg.Logging.MaxSizeMB, cfg.Logging.Backups)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer runLog.Close()

	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: cmd.ErrOrStderr(),
		File:    runLog,
	})
	if err != nil {
		return err
	}
	ctx := failures.WithRunID(cmd.Context(), uuid.NewString())
	logger = logging.WithContext(ctx, logger)
	logger.Info("fonarchive starting",
		logging.String("version", version),
		logging.String("config", cctx.configPath),
		logging.String("run_log", runLog.Path()),
	)
	logging.PruneRunLogs(logger, logDir, cfg.Logging.RetentionDays, runLog.Path())

	out := cmd.OutOrStdout()
	prompter := prompt.New(cmd.InOrStdin(), out, cfg.Prompts.AssumeYes)

	req, err := resolveRequest(cfg, prompter, opts, logger)
	if err != nil {
		return finishFailed(out, logger, runLog, err)
	}

	p := pipeline.New(cfg, logger, prompter,
		pipeline.WithProgress(progress.NewFactory(cmd.ErrOrStderr(), prompter.Interactive())))
	stats, err := p.Run(ctx, req)
	if err != nil {
		if failures.IsGracefulExit(err) {
			return finishEmpty(out, logger, runLog, cfg.Logging.MaxSizeMB, err)
		}
		return finishFailed(out, logger, runLog, err)
	}

	logger.Info("fonarchive finished", logging.String("summary", stats.String()))
	capReached := runLog.CapReached()
	logPath, relocateErr := runLog.Relocate(stats.ArchiveRoot)
	if relocateErr != nil {
		fmt.Fprintf(out, "Warning: run log left at %s: %v\n", runLog.Path(), relocateErr)
		logPath = runLog.Path()
	}

	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderSummary(stats, logPath, colorize))
	if capReached {
		fmt.Fprintln(out, colorText(capWarning(cfg.Logging.MaxSizeMB), ansiYellow, colorize))
	}
	fmt.Fprintln(out, colorText("All done! See your FONarchive folder.", ansiGreen, colorize))
	return nil
}

// resolveRequest settles where fonts are read from and where the archive
// goes. An explicit source directory skips the username prompt.
func resolveRequest(cfg *config.Config, prompter *prompt.Prompter, opts runOptions, logger *slog.Logger) (pipeline.Request, error) {
	var req pipeline.Request
	var desktop string

	source := strings.TrimSpace(opts.sourceDir)
	if source == "" {
		source = cfg.Paths.SourceDir
	}
	if source != "" {
		expanded, err := config.ExpandPath(source)
		if err != nil {
			return req, failures.Wrap(failures.ErrSetup, "setup", "source dir", source, err)
		}
		req.SourceDir = expanded
		if desktop, err = account.HomeDesktop(); err != nil {
			return req, failures.Wrap(failures.ErrSetup, "setup", "desktop", "", err)
		}
	} else {
		loc, err := promptAccount(cfg, prompter)
		if err != nil {
			return req, err
		}
		logger.Info("account resolved",
			logging.String("username", loc.Username),
			logging.String("livetype", loc.Livetype),
		)
		req.SourceDir = filepath.FromSlash(loc.Livetype)
		desktop = filepath.FromSlash(loc.Desktop)
	}

	output := strings.TrimSpace(opts.outputDir)
	if output == "" {
		output = cfg.Paths.OutputDir
	}
	if output == "" {
		output = filepath.Join(desktop, cfg.Archive.FolderName)
	}
	expanded, err := config.ExpandPath(output)
	if err != nil {
		return req, failures.Wrap(failures.ErrSetup, "setup", "output dir", output, err)
	}
	req.ArchiveBase = expanded
	logger.Info("run locations",
		logging.String("source", req.SourceDir),
		logging.String("archive", req.ArchiveBase),
	)
	return req, nil
}

func promptAccount(cfg *config.Config, prompter *prompt.Prompter) (account.Locations, error) {
	if _, err := account.Resolve(runtime.GOOS, account.DefaultUsername()); errors.Is(err, account.ErrUnsupportedOS) {
		return account.Locations{}, failures.Wrap(failures.ErrSetup, "setup", "locate font cache",
			"no livetype cache on "+runtime.GOOS+"; pass --source-dir", err)
	}
	return prompter.Username(account.DefaultUsername(), cfg.Prompts.MaxUsernameAttempts, func(name string) (account.Locations, error) {
		loc, err := account.Resolve(runtime.GOOS, name)
		if err != nil {
			return loc, err
		}
		return loc, loc.Validate()
	})
}

func finishEmpty(out io.Writer, logger *slog.Logger, runLog *logging.RunLog, maxSizeMB int, err error) error {
	message := "No valid fonts found."
	if errors.Is(err, failures.ErrNoFiles) {
		message = "No files found in the font cache."
	}
	logger.Info(message, logging.String("run_log", runLog.Path()))
	fmt.Fprintln(out, message)
	if runLog.CapReached() {
		fmt.Fprintln(out, capWarning(maxSizeMB))
	}
	return nil
}

func finishFailed(out io.Writer, logger *slog.Logger, runLog *logging.RunLog, err error) error {
	if errors.Is(err, failures.ErrCancelled) {
		logger.Info("run cancelled", logging.Error(err))
	} else {
		logger.Error("run failed", logging.Error(err))
	}
	fmt.Fprintf(out, "Diagnostics: %s\n", runLog.Path())
	return err
}
