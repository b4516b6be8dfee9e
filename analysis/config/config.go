// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the yaml analysis configuration and provides the
// leveled logging used by the analyses and commands.
package config

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config selects which analyses run and on which functions. A field left out
// of the yaml file keeps its zero value; Load fills in defaults afterwards.
type Config struct {
	Options

	sourceFile string

	// if the FuncFilter is specified
	funcFilterRegex *regexp.Regexp

	// Analyses lists the analyses to run, by name. An empty list runs all
	// registered analyses.
	Analyses []string `yaml:"analyses"`
}

// Options are the scalar settings of the tool.
type Options struct {
	// FuncFilter restricts the analyses to the functions whose name matches
	// the filter
	FuncFilter string `yaml:"func-filter"`

	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// SilenceWarn suppresses warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		Analyses: nil,
		Options: Options{
			FuncFilter:  "",
			LogLevel:    int(InfoLevel),
			SilenceWarn: false,
		},
	}
}

// Load reads a configuration from a yaml file.
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}
	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.FuncFilter != "" {
		r, err := regexp.Compile(cfg.FuncFilter)
		if err == nil {
			cfg.funcFilterRegex = r
		}
	}
	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// MatchFuncFilter returns true if the function name matches the filter set in
// the config file. If no filter has been set, every name matches. When the
// filter was specified but did not compile to a regex, the safe fallback is a
// prefix check.
func (c Config) MatchFuncFilter(name string) bool {
	if c.funcFilterRegex != nil {
		return c.funcFilterRegex.MatchString(name)
	} else if c.FuncFilter != "" {
		return strings.HasPrefix(name, c.FuncFilter)
	}
	return true
}

// RunsAnalysis returns true if the named analysis is selected by the config.
func (c Config) RunsAnalysis(name string) bool {
	if len(c.Analyses) == 0 {
		return true
	}
	for _, selected := range c.Analyses {
		if selected == name {
			return true
		}
	}
	return false
}
