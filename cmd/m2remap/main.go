// Package main provides the m2remap command-line tool. It rebuilds the
// SequenceIdxHashByID lookup table of downported M2 models, one file or a
// whole directory tree at a time.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Thiesant/M2-SequenceIdxHashByID-Remapper/pkg/batch"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "m2remap",
		Usage:     "Rebuild the SequenceIdxHashByID lookup table of downported M2 models",
		ArgsUsage: "<input.m2|folder> [output.m2]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "reprocess files that already carry the SEQREMAP footer",
			},
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"r"},
				Usage:   "descend into subfolders when the input is a folder",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: 1,
				Usage: "number of files processed concurrently in folder mode",
			},
			&cli.BoolFlag{
				Name:  "no-backup",
				Usage: "skip the backup copy before overwriting a file in place",
			},
			&cli.BoolFlag{
				Name:  "compress-backup",
				Usage: "store backups as zstd containers (.bak.zst) instead of plain copies",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "write a JSON report of all results to this file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file path (default ~/.config/m2remap/config.yaml)",
			},
		},
		Action:   run,
		Commands: []*cli.Command{restoreCommand()},
	}
}

func run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return cli.ShowAppHelp(c)
	}

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}

	workers := int(c.Int("workers"))
	compressBackup := c.Bool("compress-backup")
	noBackup := c.Bool("no-backup")
	reportPath := c.String("report")
	logLevel := c.String("log-level")
	cfg.apply(c, &workers, &compressBackup, &noBackup, &reportPath, &logLevel)

	log := newLogger(logLevel)
	opts := batch.Options{
		Force:          c.Bool("force"),
		Backup:         !noBackup,
		CompressBackup: compressBackup,
		Workers:        workers,
		Log:            log,
	}

	input := c.Args().First()
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	if info.IsDir() {
		return runFolder(input, c.Bool("recursive"), reportPath, opts, log)
	}
	return runFile(input, c.Args().Get(1), reportPath, opts, log)
}

func runFile(input, output, reportPath string, opts batch.Options, log *slog.Logger) error {
	res := batch.ProcessFile(input, output, opts)

	if reportPath != "" {
		report := &batch.Report{}
		report.Add(res)
		if err := batch.WriteReport(reportPath, report); err != nil {
			return err
		}
	}

	switch res.Status {
	case batch.StatusSkipped:
		log.Info("file already processed, use --force to reprocess", "path", res.Path)
	case batch.StatusFailed:
		return fmt.Errorf("%s: %s", res.Path, res.Error)
	}
	return nil
}

func runFolder(input string, recursive bool, reportPath string, opts batch.Options, log *slog.Logger) error {
	report, err := batch.ProcessDir(input, recursive, opts)
	if err != nil {
		return err
	}

	log.Info("folder done", "path", input,
		"processed", report.Processed, "skipped", report.Skipped, "failed", report.Failed)

	if reportPath != "" {
		if err := batch.WriteReport(reportPath, report); err != nil {
			return err
		}
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed, len(report.Results))
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
