// Copyright (c) 2025 Justin Cranford
//
//

// Package config loads process Settings from flags, environment variables,
// and an optional YAML file, using viper's kebab-case key convention.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings holds every configurable knob for the demo CLI and its TLS
// endpoint wiring. Field names are PascalCase; YAML/flag keys are the
// kebab-case names given in each field's mapstructure tag
// (BindPublicAddress <-> bind-public-address).
type Settings struct {
	DevMode bool `mapstructure:"dev"`

	BindPublicProtocol string `mapstructure:"bind-public-protocol"`
	BindPublicAddress  string `mapstructure:"bind-public-address"`
	BindPublicPort     uint16 `mapstructure:"bind-public-port"`

	BindPrivateProtocol string `mapstructure:"bind-private-protocol"`
	BindPrivateAddress  string `mapstructure:"bind-private-address"`
	BindPrivatePort     uint16 `mapstructure:"bind-private-port"`

	BrowserRateLimit int    `mapstructure:"browser-rate-limit"`
	ServiceRateLimit int    `mapstructure:"service-rate-limit"`
	LogLevel         string `mapstructure:"log-level"`

	TLSPublicDNSNames      []string `mapstructure:"tls-public-dns-names"`
	TLSPublicIPAddresses   []string `mapstructure:"tls-public-ip-addresses"`
	TLSPrivateDNSNames     []string `mapstructure:"tls-private-dns-names"`
	TLSPrivateIPAddresses  []string `mapstructure:"tls-private-ip-addresses"`

	// Credential manifest: file lists and options for an
	// internal/nettls/creds.Builder.
	TrustFiles []string `mapstructure:"trust-files"`
	RevokeFiles []string `mapstructure:"revoke-files"`
	KeyFiles    []string `mapstructure:"key-files"`
	Priority    string   `mapstructure:"priority"`
	PeerAuth    string   `mapstructure:"peer-auth"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("dev", false)
	v.SetDefault("bind-public-protocol", "https")
	v.SetDefault("bind-public-address", "0.0.0.0")
	v.SetDefault("bind-public-port", uint16(8080))
	v.SetDefault("bind-private-protocol", "https")
	v.SetDefault("bind-private-address", "127.0.0.1")
	v.SetDefault("bind-private-port", uint16(9090))
	v.SetDefault("browser-rate-limit", 100)
	v.SetDefault("service-rate-limit", 25)
	v.SetDefault("log-level", "INFO")
	v.SetDefault("priority", "NORMAL")
	v.SetDefault("peer-auth", "none")
}

// ParseWithFlagSet parses args against a fresh pflag.FlagSet and returns the
// resulting Settings. A fresh FlagSet is required (rather than the global
// pflag.CommandLine) so tests can call this repeatedly and in parallel
// without "flag redefined" panics.
func ParseWithFlagSet(fs *pflag.FlagSet, args []string, requireConfigFile bool) (*Settings, error) {
	v := viper.New()
	defaults(v)

	fs.String("config", "", "path to a YAML config file")
	fs.Bool("dev", false, "enable dev mode")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	configPath, _ := fs.GetString("config")
	if configPath != "" {
		v.SetConfigFile(configPath)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	} else if requireConfigFile {
		return nil, fmt.Errorf("config file is required but none was provided")
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &settings, nil
}

// RequireNewForTest returns default Settings, parsed with a FlagSet named
// serviceName, panicking on error so test call sites stay single-line.
func RequireNewForTest(serviceName string) *Settings {
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)

	settings, err := ParseWithFlagSet(fs, []string{}, false)
	if err != nil {
		panic(err)
	}

	return settings
}
