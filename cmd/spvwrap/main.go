// Command spvwrap adapts the entry point described by a TOML interface
// description and writes the SPIR-V module.
//
// Usage:
//
//	spvwrap build <shader.toml> [-o out.spv] [-d]
//	spvwrap dis <shader.spv>
//	spvwrap version
//
// The global --loglevel (-ll) selects silent, error, warn or verbose output.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ComedicChimera/olive"

	"github.com/gogpu/spvwrap"
	"github.com/gogpu/spvwrap/desc"
	"github.com/gogpu/spvwrap/logging"
	"github.com/gogpu/spvwrap/spirv"
)

func main() {
	cli := olive.NewCLI("spvwrap", "spvwrap adapts shader entry points to the SPIR-V interface", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the log level", false, logging.LevelNames)
	logLvlArg.SetDefaultValue("warn")

	buildCmd := cli.AddSubcommand("build", "wrap the entry point of an interface description", true)
	buildCmd.AddPrimaryArg("desc-path", "the path to the TOML interface description", true)
	buildCmd.AddStringArg("output", "o", "the output file (default: <desc>.spv)", false)
	buildCmd.AddFlag("dis", "d", "print the disassembled module")

	disCmd := cli.AddSubcommand("dis", "disassemble a SPIR-V binary", true)
	disCmd.AddPrimaryArg("spv-path", "the path to the SPIR-V binary", true)

	cli.AddSubcommand("version", "print the spvwrap version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(2)
	}

	log := logging.New(logging.ParseLevel(result.Arguments["loglevel"].(string)))

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		execBuildCommand(subResult, log)
	case "dis":
		execDisCommand(subResult, log)
	case "version":
		logging.PrintInfoMessage("spvwrap Version", spvwrap.Version)
	}

	if log.ErrorCount > 0 {
		os.Exit(1)
	}
}

// execBuildCommand executes the build subcommand and reports all errors
// through log.
func execBuildCommand(result *olive.ArgParseResult, log *logging.Logger) {
	descPath, _ := result.PrimaryArg()

	outPath := strings.TrimSuffix(descPath, filepath.Ext(descPath)) + ".spv"
	if outArg, ok := result.Arguments["output"]; ok {
		outPath = outArg.(string)
	}

	d, err := desc.Load(descPath)
	if err != nil {
		log.Error("Description Error", err)
		return
	}
	log.Info("Loaded", fmt.Sprintf("%s (%s %s)", descPath, d.Shader.Stage, d.Shader.Name))

	m, err := desc.Lower(d)
	if err != nil {
		log.Error("Lowering Error", err)
		return
	}
	res, err := spvwrap.Adapt(m, log)
	if err != nil {
		// Process already reported it.
		return
	}

	data := m.Context.Assemble(m.Code)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Error("Output Error", err)
		return
	}
	log.Info("Compiled", fmt.Sprintf("%s -> %s, %s (%d bytes)", descPath, outPath, res.WrapperName, len(data)))

	if result.HasFlag("dis") {
		logging.PrintBanner(outPath)
		if err := spirv.Disassemble(os.Stdout, data); err != nil {
			log.Error("Disassembly Error", err)
		}
	}
}

// execDisCommand executes the dis subcommand.
func execDisCommand(result *olive.ArgParseResult, log *logging.Logger) {
	spvPath, _ := result.PrimaryArg()
	data, err := os.ReadFile(spvPath)
	if err != nil {
		log.Error("Path Error", err)
		return
	}
	if err := spirv.Disassemble(os.Stdout, data); err != nil {
		log.Error("Disassembly Error", err)
	}
}
