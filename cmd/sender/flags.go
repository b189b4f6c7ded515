package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func cmd() *cli.Command {
	return &cli.Command{
		Name:      "sender",
		Usage:     "Queue local files and upload them to a file-sender API",
		Version:   version,
		ArgsUsage: "FILE [FILE...]",
		Flags:     flags(),
		Action:    runSend,
	}
}

func flags() []cli.Flag {
	var config string

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: &config,
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Aliases: []string{"e"},
			Usage:   "Upload endpoint URL",
			Value:   "http://localhost:8080/api/upload",
			Sources: cli.NewValueSourceChain(yaml.YAML("sender.endpoint", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "max-size-mb",
			Usage:   "Reject files larger than this locally, before any network call",
			Value:   10,
			Sources: cli.NewValueSourceChain(yaml.YAML("sender.max_size_mb", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Aliases: []string{"n"},
			Usage:   "Maximum parallel uploads, 0 uploads everything at once",
			Value:   4,
			Sources: cli.NewValueSourceChain(yaml.YAML("sender.concurrency", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringSliceFlag{
			Name:    "accept",
			Aliases: []string{"a"},
			Usage:   "Accepted type patterns (\".pdf\", \"image/png\", \"image/*\"); empty accepts everything",
		},
	}
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
