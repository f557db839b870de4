package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"keystone/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create keystone.toml and a starter architecture definition",
	Long: `Initialize keystone in [dir] (default: current directory) by writing a
keystone.toml manifest and an architecture.yaml with a layered starter
architecture. Existing files are never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("language", project.LangTypeScript, "project language (typescript|go)")
}

const definitionFile = "architecture.yaml"

func runInit(cmd *cobra.Command, args []string) error {
	lang, err := cmd.Flags().GetString("language")
	if err != nil {
		return fmt.Errorf("failed to get language flag: %w", err)
	}
	if lang != project.LangTypeScript && lang != project.LangGo {
		return fmt.Errorf("unsupported language %q (expected typescript|go)", lang)
	}

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "app"
	}
	manifest, err := project.Template(name, lang, definitionFile)
	if err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, manifest, 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	defPath := filepath.Join(target, definitionFile)
	createdDef := false
	if _, err := os.Stat(defPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(defPath, []byte(starterDefinition(name, lang)), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", definitionFile, err)
		}
		createdDef = true
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized keystone in %s\n", target)
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	if createdDef {
		fmt.Fprintf(out, "  - %s\n", definitionFile)
	} else {
		fmt.Fprintf(out, "  - %s (existing)\n", definitionFile)
	}
	return nil
}

// starterDefinition is a hexagonal layout: a pure domain with ports,
// adapters implementing them and an application layer on top.
func starterDefinition(name, lang string) string {
	root := "src"
	if lang == project.LangGo {
		root = "internal"
	}
	return fmt.Sprintf(`kinds:
  Domain:
    pure: true

architectures:
  %q:
    location: %s
    members:
      domain:
        kind: Domain
        members:
          ports: ports
      application: application
      infrastructure: infrastructure
    constraints:
      noDependency:
        - [domain, application]
        - [domain, infrastructure]
        - [application, infrastructure]
      mustImplement:
        - [domain.ports, infrastructure]
      noCycles: [domain, application, infrastructure]
`, name, root)
}
