package config

import "time"

// Config holds runtime settings for the antiquary client.
//
// An empty RemoteDatabaseDSN means no backend is configured: every scan stays
// on the device. An empty S3Bucket disables image upload.
type Config struct {
	LocalDatabaseDSN    string
	RemoteDatabaseDSN   string
	JWTSecret           string
	S3RootUser          string
	S3RootPassword      string
	S3Bucket            string
	S3Region            string
	S3BaseEndpoint      string
	S3PublicBaseURL     string
	ImageMaxDimension   int
	CollectionsCacheTTL time.Duration
	BackendCheckTimeout time.Duration
	CapturesDir         string
}

// LoadDefaults populates c with defaults suitable for local development.
func (c *Config) LoadDefaults() {
	c.LocalDatabaseDSN = "antiquary.db"
	c.RemoteDatabaseDSN = ""
	c.JWTSecret = "secretKey"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "antiques"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3PublicBaseURL = ""
	c.ImageMaxDimension = 2048
	c.CollectionsCacheTTL = 30 * time.Second
	c.BackendCheckTimeout = 5 * time.Second
	c.CapturesDir = "captures"
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
// Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
