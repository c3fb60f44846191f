package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Only the flags
// listed here are looked at; see flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-l", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-w", "-m", "-t", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LocalDatabaseDSN, "l", cfg.LocalDatabaseDSN, "local database DSN")
	fs.StringVar(&cfg.RemoteDatabaseDSN, "d", cfg.RemoteDatabaseDSN, "remote database DSN")
	fs.StringVar(&cfg.JWTSecret, "s", cfg.JWTSecret, "access token secret")

	fs.StringVar(&cfg.S3RootUser, "u", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3PublicBaseURL, "w", cfg.S3PublicBaseURL, "public base URL of uploaded images")

	fs.IntVar(&cfg.ImageMaxDimension, "m", cfg.ImageMaxDimension, "max image side (px)")
	checkTimeout := fs.Int("t", int(cfg.BackendCheckTimeout.Seconds()), "backend check timeout (in seconds)")
	fs.StringVar(&cfg.CapturesDir, "x", cfg.CapturesDir, "captures directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.BackendCheckTimeout = time.Duration(*checkTimeout) * time.Second
}
