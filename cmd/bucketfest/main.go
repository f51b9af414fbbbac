// Command bucketfest enumerates every object under an S3 bucket/prefix and
// writes a Parquet manifest of what it found: bucket, key, file name, size,
// and last-modified timestamp per object. The manifest lands on the local
// filesystem or is uploaded to a (possibly different) object store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/objstream/bucketfest/internal/config"
	"github.com/objstream/bucketfest/internal/errs"
	"github.com/objstream/bucketfest/internal/logger"
	"github.com/objstream/bucketfest/internal/manifest"
	"github.com/objstream/bucketfest/internal/pipeline"
	"github.com/objstream/bucketfest/internal/storage"
	storageminio "github.com/objstream/bucketfest/internal/storage/minio"
)

func main() {
	// Ambient credentials may live in a .env next to the working directory.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bucketfest:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "bucketfest",
		Usage:     "generate a Parquet manifest for an S3 bucket",
		ArgsUsage: "s3://bucket[/prefix]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "manifest destination: local path or s3:// URI",
				Required: true,
				EnvVars:  []string{"BUCKETFEST_OUTPUT"},
			},
			&cli.StringFlag{
				Name:    "source-endpoint",
				Usage:   "custom endpoint URL for the source bucket (S3-compatible services)",
				EnvVars: []string{"BUCKETFEST_SOURCE_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "dest-endpoint",
				Usage:   "custom endpoint URL for the destination bucket",
				EnvVars: []string{"BUCKETFEST_DEST_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "delimiter",
				Aliases: []string{"d"},
				Usage:   "delimiter used to extract the file name from a key",
				Value:   manifest.DefaultDelimiter,
				EnvVars: []string{"BUCKETFEST_DELIMITER"},
			},
			&cli.StringFlag{
				Name:    "source-access-key",
				Usage:   "access key ID for the source bucket",
				EnvVars: []string{"BUCKETFEST_SOURCE_ACCESS_KEY"},
			},
			&cli.StringFlag{
				Name:    "source-secret-key",
				Usage:   "secret access key for the source bucket",
				EnvVars: []string{"BUCKETFEST_SOURCE_SECRET_KEY"},
			},
			&cli.StringFlag{
				Name:    "dest-access-key",
				Usage:   "access key ID for the destination bucket",
				EnvVars: []string{"BUCKETFEST_DEST_ACCESS_KEY"},
			},
			&cli.StringFlag{
				Name:    "dest-secret-key",
				Usage:   "secret access key for the destination bucket",
				EnvVars: []string{"BUCKETFEST_DEST_SECRET_KEY"},
			},
			&cli.StringFlag{
				Name:    "compression",
				Usage:   "parquet codec: snappy, gzip, zstd, or none",
				Value:   "snappy",
				EnvVars: []string{"BUCKETFEST_COMPRESSION"},
			},
			&cli.StringFlag{
				Name:    "profile",
				Usage:   "YAML file with named endpoint profiles",
				EnvVars: []string{"BUCKETFEST_PROFILE"},
			},
			&cli.StringFlag{
				Name:    "source-profile",
				Usage:   "profile entry to use for the source bucket",
				EnvVars: []string{"BUCKETFEST_SOURCE_PROFILE"},
			},
			&cli.StringFlag{
				Name:    "dest-profile",
				Usage:   "profile entry to use for the destination bucket",
				EnvVars: []string{"BUCKETFEST_DEST_PROFILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn, or error",
				Value:   "info",
				EnvVars: []string{"BUCKETFEST_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "json or console",
				Value:   "console",
				EnvVars: []string{"BUCKETFEST_LOG_FORMAT"},
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errs.New(errs.ErrKindInvalidInput, "expected exactly one s3://bucket[/prefix] argument")
	}

	log := logger.New(&logger.Config{
		Level:  c.String("log-level"),
		Format: c.String("log-format"),
		Output: os.Stderr,
	})

	codec, err := manifest.ParseCompression(c.String("compression"))
	if err != nil {
		return err
	}

	source, err := storage.ParseSourceURI(c.Args().First())
	if err != nil {
		return err
	}
	output, err := storage.ParseOutputLocation(c.String("output"))
	if err != nil {
		return err
	}

	profiles, err := loadProfiles(c)
	if err != nil {
		return err
	}

	srcCfg, err := buildEndpoint(profiles, c.String("source-profile"),
		c.String("source-endpoint"), c.String("source-access-key"), c.String("source-secret-key"))
	if err != nil {
		return err
	}
	srcStore, err := storageminio.New(srcCfg)
	if err != nil {
		return err
	}
	defer srcStore.Close()

	var destStore storage.Store
	if output.IsRemote() {
		destCfg, err := buildEndpoint(profiles, c.String("dest-profile"),
			c.String("dest-endpoint"), c.String("dest-access-key"), c.String("dest-secret-key"))
		if err != nil {
			return err
		}
		destStore, err = storageminio.New(destCfg)
		if err != nil {
			return err
		}
		defer destStore.Close()
	}

	p := pipeline.New(srcStore, destStore, pipeline.Config{
		Source:      source,
		Output:      output,
		Delimiter:   c.String("delimiter"),
		Compression: codec,
	}, log)

	if _, err := p.Run(context.Background()); err != nil {
		log.ErrorErr("manifest generation failed", err)
		return err
	}
	return nil
}

func loadProfiles(c *cli.Context) (*config.File, error) {
	path := c.String("profile")
	if path == "" {
		if c.String("source-profile") != "" || c.String("dest-profile") != "" {
			return nil, errs.New(errs.ErrKindInvalidInput, "--source-profile/--dest-profile require --profile")
		}
		return &config.File{}, nil
	}
	return config.Load(path)
}

// buildEndpoint layers endpoint configuration: profile entry first, then
// explicit endpoint and credential flags on top.
func buildEndpoint(profiles *config.File, profileName, endpoint, accessKey, secretKey string) (*storage.EndpointConfig, error) {
	cfg, err := profiles.Endpoint(profileName)
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveEndpoint(endpoint); err != nil {
		return nil, err
	}
	if accessKey != "" && secretKey != "" {
		cfg.AccessKey = accessKey
		cfg.SecretKey = secretKey
	}
	return cfg, nil
}
