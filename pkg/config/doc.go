// Package config loads typed configuration structs from the process
// environment.
//
// Values are read with github.com/caarlos0/env/v11 using `env` and
// `envDefault` field tags. Before the first load the package reads a `.env`
// file from the working directory through github.com/joho/godotenv when one is
// present; variables already exported in the environment win over the file.
//
// Each configuration type is parsed once per process and cached, so packages
// can call Load for the same struct from several places without re-parsing:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// MustLoad panics instead of returning an error and is meant for main.
// Reset drops the cache and is intended for tests that change the environment.
package config
