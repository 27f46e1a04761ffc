package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <player.yaml> [player.yaml...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &PlayerFileValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}

	if failed {
		os.Exit(1)
	}
}

type PlayerFileValidator struct {
	errors []string
}

var snakeCase = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func (v *PlayerFileValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("player file must have .yaml extension: %s", baseName)
	}
	if !snakeCase.MatchString(strings.TrimSuffix(baseName, ext)) {
		return fmt.Errorf("player filename '%s' must be lowercase snake_case (e.g., my_player.yaml)", baseName)
	}

	v.errors = nil

	// Load rejects unknown keys and checks every option bound.
	pf, err := options.Load(filename)
	if err != nil {
		return err
	}

	v.validateGeneration(pf)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// validateGeneration catches option combinations that pass their individual
// bounds but cannot fill the world, such as more upgrades than locations.
func (v *PlayerFileValidator) validateGeneration(pf *options.PlayerFile) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := world.Generate(context.Background(), 1, pf.Options, 0, quiet); err != nil {
		v.errors = append(v.errors, fmt.Sprintf("  - generation: %v", err))
		return
	}

	if pf.Options.StartingCharacters == options.StartingCharactersDefault && pf.Options.NumStartingCharacters != options.Defaults().NumStartingCharacters {
		fmt.Printf("  note: num_starting_characters is ignored with default_characters\n")
	}
}
