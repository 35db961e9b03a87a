package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Thiesant/M2-SequenceIdxHashByID-Remapper/pkg/backup"
	"github.com/Thiesant/M2-SequenceIdxHashByID-Remapper/pkg/batch"
)

func restoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Restore a model file from a compressed backup container",
		ArgsUsage: "<file.m2.bak.zst> [dest.m2]",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return fmt.Errorf("backup path is required")
			}
			src := c.Args().First()

			dest := c.Args().Get(1)
			if dest == "" {
				dest = strings.TrimSuffix(src, batch.CompressedBackupSuffix)
				if dest == src {
					return fmt.Errorf("cannot derive destination from %q, pass it explicitly", src)
				}
			}

			data, err := backup.ReadFile(src)
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			if err := os.WriteFile(dest, data, 0644); err != nil {
				return fmt.Errorf("write restored file: %w", err)
			}

			fmt.Printf("Restored %s (%d bytes)\n", dest, len(data))
			return nil
		},
	}
}
