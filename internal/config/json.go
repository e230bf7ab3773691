// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk layout of the optional JSON
// configuration file.
type StructuredJSONConfig struct {
	App struct {
		SessionSignKey      string   `json:"session_sign_key"`
		SessionIssuer       string   `json:"session_issuer"`
		SessionDuration     Duration `json:"session_duration"`
		KDFIterations       int      `json:"kdf_iterations"`
		RSABits             int      `json:"rsa_bits"`
		AdminMasterPassword string   `json:"admin_master_password"`
		LogLevel            string   `json:"log_level"`
		Version             string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"dsn"`
		} `json:"db,omitempty"`

		Blocks struct {
			BlockSize     int  `json:"block_size"`
			SkipChecksums bool `json:"skip_checksums"`
		} `json:"blocks,omitempty"`
	} `json:"storage,omitempty"`

	Streams struct {
		IdleTimeout Duration `json:"idle_timeout"`
	} `json:"streams,omitempty"`

	Workers struct {
		SessionCleanupInterval Duration `json:"session_cleanup_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			SessionSignKey:      jsonCfg.App.SessionSignKey,
			SessionIssuer:       jsonCfg.App.SessionIssuer,
			SessionDuration:     time.Duration(jsonCfg.App.SessionDuration),
			KDFIterations:       jsonCfg.App.KDFIterations,
			RSABits:             jsonCfg.App.RSABits,
			AdminMasterPassword: jsonCfg.App.AdminMasterPassword,
			LogLevel:            jsonCfg.App.LogLevel,
			Version:             jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
			Blocks: Blocks{
				BlockSize:     jsonCfg.Storage.Blocks.BlockSize,
				SkipChecksums: jsonCfg.Storage.Blocks.SkipChecksums,
			},
		},
		Streams: Streams{
			IdleTimeout: time.Duration(jsonCfg.Streams.IdleTimeout),
		},
		Workers: Workers{
			SessionCleanupInterval: time.Duration(jsonCfg.Workers.SessionCleanupInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
