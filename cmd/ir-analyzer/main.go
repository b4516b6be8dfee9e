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

// ir-analyzer: loads serialized IR modules, bridges them into validated
// form, and runs the registered abstract interpretations over every defined
// function.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir/adapter"
	"github.com/awslabs/ar-ir-tools/analysis/ir/bridge"
	"github.com/awslabs/ar-ir-tools/analysis/liveness"
	"github.com/awslabs/ar-ir-tools/analysis/signs"
	"github.com/awslabs/ar-ir-tools/internal/formatutil"
)

// flags
var (
	configPath = ""
	verbose    = false
)

func init() {
	flag.StringVar(&configPath, "config", "", "path to the yaml config file")
	flag.BoolVar(&verbose, "verbose", false, "force debug-level logging")
}

const usage = `Analyze serialized IR modules.

Usage:
  ir-analyzer [-config config.yaml] module.json...

Use the -help flag to display the options.

Examples:
% ir-analyzer -config config.yaml module.json
`

func main() {
	if err := doMain(); err != nil {
		fmt.Fprintf(os.Stderr, "ir-analyzer: %s\n", err)
		os.Exit(1)
	}
}

func doMain() error {
	flag.Parse()

	if len(flag.Args()) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg := config.NewDefault()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
	logger := config.NewLogGroup(cfg)

	for _, filename := range flag.Args() {
		if err := analyzeFile(filename, cfg, logger); err != nil {
			return err
		}
	}
	return nil
}

func analyzeFile(filename string, cfg *config.Config, logger *config.LogGroup) error {
	logger.Infof("Reading module %s", filename)
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not open module file: %w", err)
	}
	defer file.Close()

	decoded, err := adapter.DecodeModule(file)
	if err != nil {
		return err
	}
	module, err := bridge.ConvertModule(decoded)
	if err != nil {
		return err
	}
	logger.Infof("Bridged module %s: %d globals, %d functions",
		formatutil.Sanitize(module.Name), len(module.Globals), len(module.Functions))

	for _, name := range module.DefinedFunctions() {
		if !cfg.MatchFuncFilter(string(name)) {
			logger.Debugf("Skipping function %s", formatutil.Sanitize(string(name)))
			continue
		}
		analyzeFunction(module.Functions[name], cfg, logger)
	}
	return nil
}

func analyzeFunction(fn bridge.Function, cfg *config.Config, logger *config.LogGroup) {
	display := formatutil.Bold(formatutil.Sanitize(string(fn.Name)))
	cfgBlocks := fn.Body.Labels()
	logger.Debugf("Analyzing %s: %d blocks", display, len(cfgBlocks))

	if cfg.RunsAnalysis("signs") {
		state := signs.Analyze(fn.Body)
		known := 0
		total := 0
		exit := state[cfgBlocks[len(cfgBlocks)-1]]
		for _, sign := range exit.Out {
			total++
			if sign != signs.Top && sign != signs.Bot {
				known++
			}
		}
		fmt.Printf("%s signs: %s\n", display,
			formatutil.Green(fmt.Sprintf("%d/%d registers with a known sign", known, total)))
	}

	if cfg.RunsAnalysis("liveness") {
		live := liveness.Analyze(fn.Body)
		atEntry := live[fn.Body.Entry()].Len()
		fmt.Printf("%s liveness: %s\n", display,
			formatutil.Cyan(fmt.Sprintf("%d registers live at entry", atEntry)))
	}
}
