// Package config loads typed configuration from environment variables using
// caarlos0/env, after reading a .env file once when one exists.
//
//	var cfg platform.Config
//	config.MustLoad(&cfg)
//
// Each configuration type is parsed once and cached for the process lifetime.
// Use Parse in tests that need to re-read the environment.
package config
