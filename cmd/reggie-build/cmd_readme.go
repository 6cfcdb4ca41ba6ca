package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/reggie-db/reggie-build/internal/config"
	"github.com/reggie-db/reggie-build/internal/readme"
	"github.com/reggie-db/reggie-build/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newReadmeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readme",
		Short: "Refresh the --help blocks embedded in a README",
		Long: `Refresh README help blocks.

Every block delimited by <!-- BEGIN:help CMD --> and <!-- END:help CMD -->
is replaced with the output of "CMD --help". Help commands run in parallel,
limited by --jobs.`,
		Args: cobra.NoArgs,
		RunE: runReadme,
	}
	cmd.Flags().StringP("readme", "r", "", "Path to the README file (defaults to the configured README or README.md)")
	cmd.Flags().Bool("write", true, "Write changes back to the README file")
	cmd.Flags().IntP("jobs", "j", max(1, runtime.NumCPU()-1), "Maximum number of parallel help commands")
	return cmd
}

func runReadme(cmd *cobra.Command, _ []string) error {
	root, _ := cmd.Flags().GetString("root")
	path, _ := cmd.Flags().GetString("readme")
	write, _ := cmd.Flags().GetBool("write")
	jobs, _ := cmd.Flags().GetInt("jobs")

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.ReadmePath()
	}
	path, err = resolveReadme(root, path)
	if err != nil {
		return err
	}

	log.Info().Str("readme", path).Int("jobs", jobs).Msg("Updating help blocks")
	progress := ui.NewProgress(cmd.ErrOrStderr(), len(readme.Commands(readFile(path))))
	updated, changed, err := readme.UpdateFile(cmd.Context(), path, readme.ShellRunner{Dir: root}, jobs, progress, write)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case !changed:
		_, _ = fmt.Fprintln(out, "README is already up to date.")
	case write:
		_, _ = fmt.Fprintf(out, "README help blocks updated: %s\n", path)
	default:
		_, _ = fmt.Fprint(out, updated)
	}
	return nil
}

// resolveReadme returns path if it exists, otherwise path relative to the
// workspace root.
func resolveReadme(root, path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		candidate := filepath.Join(root, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("README file not found at %s", path)
}

// readFile returns the content of path, or "" when it cannot be read.
func readFile(path string) string {
	data, err := os.ReadFile(path) //nolint:gosec // README path chosen by the user
	if err != nil {
		return ""
	}
	return string(data)
}
