// Package config loads the node's on-disk TOML configuration: data
// directory, listen addresses, and the protocol parameter table native
// modules are constructed from.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"gigchain/native/params"
)

// Config is the top-level node configuration.
type Config struct {
	ListenAddress string        `toml:"ListenAddress"`
	RPCAddress    string        `toml:"RPCAddress"`
	DataDir       string        `toml:"DataDir"`
	Params        params.Params `toml:"Params"`
}

// Load reads the configuration at path, creating a default file if none
// exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{Params: params.Default()}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createDefault writes and returns a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress: ":6001",
		RPCAddress:    ":8080",
		DataDir:       "./gig-data",
		Params:        params.Default(),
	}
	cfg.Params.DevAccount = "gig1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqnh6v9h"

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
