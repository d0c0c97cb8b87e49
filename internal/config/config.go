// Package config loads runtime configuration from the environment and an
// optional .env file: store coordinates and the per-source scraping
// identity (user agent, session cookies).
package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sobani/cardvault/pkg/errors"
)

// Config holds everything the CLI needs to wire sources and the store.
type Config struct {
	// MongoURI is the deployment connection string.
	MongoURI string

	// Database and Collection locate the catalog.
	Database   string
	Collection string

	// UserAgent identifies the scraper to source sites.
	UserAgent string

	// Per-source session cookies.
	BigwebCookie    string
	YuyuteiCookie   string
	TCGCornerCookie string

	// RarityAliasPath points to the YAML table folding Bigweb rarity slips
	// to canonical rarity names.
	RarityAliasPath string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("rarity_alias_path", "alias/rarity.yaml")
	v.AutomaticEnv()

	for _, key := range []string{
		"mongo_uri", "db_name", "coll_name", "user_agent",
		"bigweb_cookie", "yuyutei_cookie", "tcg_corner_cookie",
		"rarity_alias_path",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.NewConfigError("env", "binding "+key, err)
		}
	}

	cfg := &Config{
		MongoURI:        v.GetString("mongo_uri"),
		Database:        v.GetString("db_name"),
		Collection:      v.GetString("coll_name"),
		UserAgent:       v.GetString("user_agent"),
		BigwebCookie:    v.GetString("bigweb_cookie"),
		YuyuteiCookie:   v.GetString("yuyutei_cookie"),
		TCGCornerCookie: v.GetString("tcg_corner_cookie"),
		RarityAliasPath: v.GetString("rarity_alias_path"),
	}

	return cfg, nil
}

// ValidateStore checks that the store coordinates are present.
func (c *Config) ValidateStore() error {
	if c.MongoURI == "" {
		return errors.NewConfigError("store", "MONGO_URI is required", nil)
	}
	if c.Database == "" {
		return errors.NewConfigError("store", "DB_NAME is required", nil)
	}
	if c.Collection == "" {
		return errors.NewConfigError("store", "COLL_NAME is required", nil)
	}
	return nil
}
