package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/flagx"
)

// parseFlags applies the short command-line flags:
//
//	-a  gRPC bind address
//	-d  PostgreSQL DSN
//	-s  JWT secret
//	-t  access token validity, minutes
//	-r  refresh token validity, minutes
//	-u  S3 user
//	-p  S3 password
//	-b  S3 bucket
//	-g  S3 region
//	-e  S3 endpoint
//	-x  presigned URL lifetime, minutes
//	-l  log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-u", "-p", "-b", "-g", "-e", "-x", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for preview images")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	presignExpiry := fs.Int("x", int(config.PresignExpiry.Minutes()), "presigned upload URL validity (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
	config.PresignExpiry = time.Duration(*presignExpiry) * time.Minute
}
