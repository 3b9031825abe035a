package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/notehub/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3001")
//	-d string   PostgreSQL DSN (empty selects the in-memory store)
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-o int      storage call timeout, seconds
//	-l string   log format, "json" or "pretty"
//	-m          require authentication for appending comments
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other packages.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-o", "-l", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	storageTimeout := fs.Int("o", int(config.StorageTimeout.Seconds()), "storage call timeout (in seconds)")

	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format (json|pretty)")
	fs.BoolVar(&config.RequireCommentAuth, "m", config.RequireCommentAuth, "require auth for comments")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.StorageTimeout = time.Duration(*storageTimeout) * time.Second
}
