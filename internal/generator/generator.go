package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cola-bdd/cola/pkg/cola"
)

// OutputFile is the name of the generated test file.
const OutputFile = "cola_test.go"

// Options selects where step functions are searched and where the test file
// is written.
type Options struct {
	// CodeDirectories are searched recursively. Default: the output directory.
	CodeDirectories []string
	// OutputDirectory receives cola_test.go. Default: the working directory.
	OutputDirectory string
	// Dialect is written into the runner config of the generated test.
	Dialect string
}

func StartGenerator(ctx context.Context, codeParser GoCodeParser, options Options, logger cola.Logger) error {
	outputDirectory := options.OutputDirectory
	if strings.TrimSpace(outputDirectory) == "" {
		directory, err := os.Getwd()
		if err != nil {
			return err
		}
		outputDirectory = directory
	}

	funcSources := options.CodeDirectories
	if len(funcSources) == 0 {
		funcSources = []string{outputDirectory}
	}

	output := &Output{Dialect: options.Dialect}
	for _, source := range funcSources {
		found, err := codeParser.ParseFunctionCommentsOfGoFilesInDirectoryRecursively(ctx, source)
		if err != nil {
			return fmt.Errorf("could not parse step functions in %s: %w", source, err)
		}
		logger.Debug("parsed step functions", "directory", source, "steps", len(found.StepFunctions))
		output.Merge(found)
	}

	importPath, err := DetectImportPath(outputDirectory)
	if err != nil {
		logger.Warn("could not detect import path", "directory", outputDirectory, "error", err)
	}
	packageName, err := detectPackageName(outputDirectory, importPath)
	if err != nil {
		return err
	}
	output.PackageName = packageName
	output.CurrentPackagePath = importPath

	path := filepath.Join(outputDirectory, OutputFile)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := output.Generate(file); err != nil {
		return fmt.Errorf("could not generate %s: %w", path, err)
	}

	logger.Info("generated test file",
		"path", path,
		"steps", len(output.StepFunctions),
		"configs", len(output.ConfigFunctions),
		"hooks", len(output.HooksFunctions),
	)

	return nil
}
