// Package config loads typed configuration from the process environment.
//
// Each struct type is parsed once with github.com/caarlos0/env/v11 and
// cached for the lifetime of the process. A .env file in the working
// directory, when present, is applied before the first parse through
// github.com/joho/godotenv; LoadEnv applies extra files explicitly.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Reset drops the cache, which tests use after changing the environment.
package config
