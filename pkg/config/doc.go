// Package config loads environment-based configuration structs.
//
// Load first reads an optional .env file (once per process), then parses
// environment variables into the given struct using caarlos0/env field tags:
//
//	type MailingConfig struct {
//		BaseURL   string `env:"MAILING_BASE_URL,required"`
//		SecretKey string `env:"MAILING_SECRET_KEY,required"`
//	}
//
//	var cfg MailingConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Required fields that are missing surface as an error at startup, so
// misconfigured deployments fail fast instead of sending mail with
// placeholder security values.
package config
