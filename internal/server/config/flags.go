package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/certhub/internal/flagx"
)

// serverFlags lists the short flags owned by the server.
var serverFlags = []string{"-a", "-d", "-k", "-o", "-t", "-s", "-r", "-b", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-k int      bcrypt cost
//	-o string   identity oracle URL
//	-t int      identity oracle timeout, milliseconds
//	-s string   identity oracle service token secret
//	-r string   Redis address for the oracle cache
//	-b string   log backend (slog|zap)
//	-l string   log level
//
// Only the flags listed above are parsed; everything else on the command line
// (e.g. -c) is filtered out with flagx.FilterArgs.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.OracleURL, "o", config.OracleURL, "identity oracle URL")
	oracleTimeout := fs.Int("t", int(config.OracleTimeout.Milliseconds()), "identity oracle timeout (in milliseconds)")
	fs.StringVar(&config.OracleSecretKey, "s", config.OracleSecretKey, "identity oracle secret key")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.LogBackend, "b", config.LogBackend, "log backend")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.OracleTimeout = time.Duration(*oracleTimeout) * time.Millisecond
}
