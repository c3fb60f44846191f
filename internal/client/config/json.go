package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/antiquary/internal/flagx"
	"github.com/dmitrijs2005/antiquary/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Pointer fields tell an absent
// key from a zero value.
type JsonConfig struct {
	LocalDatabaseDSN    *string         `json:"local_database_dsn"`
	RemoteDatabaseDSN   *string         `json:"remote_database_dsn"`
	JWTSecret           *string         `json:"jwt_secret"`
	S3RootUser          *string         `json:"s3_root_user"`
	S3RootPassword      *string         `json:"s3_root_password"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Region            *string         `json:"s3_region"`
	S3BaseEndpoint      *string         `json:"s3_base_endpoint"`
	S3PublicBaseURL     *string         `json:"s3_public_base_url"`
	ImageMaxDimension   *int            `json:"image_max_dimension"`
	CollectionsCacheTTL *timex.Duration `json:"collections_cache_ttl"`
	BackendCheckTimeout *timex.Duration `json:"backend_check_timeout"`
	CapturesDir         *string         `json:"captures_dir"`
}

// parseJson overlays cfg with the JSON file given by -c/-config. It panics
// when the file cannot be read or decoded.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.LocalDatabaseDSN, jc.LocalDatabaseDSN)
	setString(&cfg.RemoteDatabaseDSN, jc.RemoteDatabaseDSN)
	setString(&cfg.JWTSecret, jc.JWTSecret)
	setString(&cfg.S3RootUser, jc.S3RootUser)
	setString(&cfg.S3RootPassword, jc.S3RootPassword)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)
	setString(&cfg.CapturesDir, jc.CapturesDir)
	if jc.ImageMaxDimension != nil {
		cfg.ImageMaxDimension = *jc.ImageMaxDimension
	}
	if jc.CollectionsCacheTTL != nil {
		cfg.CollectionsCacheTTL = jc.CollectionsCacheTTL.Duration
	}
	if jc.BackendCheckTimeout != nil {
		cfg.BackendCheckTimeout = jc.BackendCheckTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
