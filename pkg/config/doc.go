// Package config loads typed configuration from environment variables.
//
// Every package owning configurable behaviour declares its own struct with
// env tags (the SSR bootstrap, the cookie manager, the HTTP server, the
// logger) and the commands load them with Load. Parsing is delegated to
// github.com/caarlos0/env/v11; dotenv files are read with
// github.com/joho/godotenv, the default .env implicitly and extra files with
// LoadEnvFiles.
//
//	var cfg ssr.Config
//	config.MustLoad(&cfg)
package config
