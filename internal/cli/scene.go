package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotgrid/pkg/scene"
)

// sceneCommand groups scene file management.
func (c *CLI) sceneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Create and export scene files",
	}
	cmd.AddCommand(c.sceneInitCommand())
	cmd.AddCommand(c.sceneExportCommand())
	return cmd
}

func (c *CLI) sceneInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write the starter scene (default scene.toml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "scene.toml"
			if len(args) == 1 {
				path = args[0]
			}
			return runSceneInit(cmd.Context(), path, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func runSceneInit(ctx context.Context, path string, force bool) error {
	logger := loggerFromContext(ctx)

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	starter := scene.Starter()
	if err := toml.NewEncoder(f).Encode(starter); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Debug("starter scene written", "path", path, "boxes", len(starter.Boxes))
	printSuccess("Created %s", path)
	printNextStep("Animate it", appName+" run "+path)
	return nil
}

func (c *CLI) sceneExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a scene as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSceneExport(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file (default stdout)")
	return cmd
}

func runSceneExport(ctx context.Context, path, output string) error {
	logger := loggerFromContext(ctx)

	doc, err := scene.Load(path)
	if err != nil {
		return err
	}
	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := scene.WriteJSON(out, doc); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	logger.Debug("scene exported", "path", path, "boxes", doc.Len())
	if output != "" {
		printFile(output)
	}
	return nil
}
