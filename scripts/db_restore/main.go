package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/MayankGitHub86/solvehub-sub000/internal/config"
)

// Restore must run while the server is stopped; it replaces the database file
// and drops stale WAL files.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	src := flag.String("from", "", "Backup file to restore")
	flag.Parse()

	if *src == "" {
		fmt.Fprintln(os.Stderr, "Restore error: -from is required")
		os.Exit(1)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	dst := cfg.DatabasePath

	if err := restore(*src, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dst + suffix); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Database %s restored from %s.\n", dst, *src)
}

// restore copies src over dst through a temporary file so a failed copy never
// leaves a truncated database behind.
func restore(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	tmp := dst + ".restore"
	dstFile, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(tmp)
		return err
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, dst)
}
