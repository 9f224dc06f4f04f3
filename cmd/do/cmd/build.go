package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

func BuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build commands",
	}

	cmd.AddCommand(buildWebCmd())
	return cmd
}

func buildWebCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Build the admin SPA and copy it into web/dist for embedding",
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildWeb(source)
		},
	}
	cmd.Flags().StringVar(&source, "source", "frontend", "SPA project directory containing package.json")
	return cmd
}

func buildWeb(source string) error {
	projectRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	sourceDir := filepath.Join(projectRoot, source)
	distDir := filepath.Join(projectRoot, "web", "dist")

	if _, err := exec.LookPath("npm"); err != nil {
		return fmt.Errorf("missing required binary: npm")
	}
	if _, err := os.Stat(filepath.Join(sourceDir, "package.json")); err != nil {
		return fmt.Errorf("no package.json in %s: %w", sourceDir, err)
	}

	fmt.Println("==> Installing dependencies...")
	if err := runIn(sourceDir, "npm", "ci"); err != nil {
		return fmt.Errorf("npm ci failed: %w", err)
	}

	fmt.Println("==> Building SPA...")
	if err := runIn(sourceDir, "npm", "run", "build"); err != nil {
		return fmt.Errorf("npm run build failed: %w", err)
	}

	fmt.Println("==> Copying build to", distDir)
	if err := os.RemoveAll(distDir); err != nil {
		return fmt.Errorf("failed to remove old dist dir: %w", err)
	}
	if err := copyDir(filepath.Join(sourceDir, "dist"), distDir); err != nil {
		return fmt.Errorf("failed to copy build: %w", err)
	}

	fmt.Println("==> Done! Rebuild the server to embed the new assets")
	return nil
}

func runIn(dir, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			return os.MkdirAll(dstPath, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dstPath, data, 0o644)
	})
}
