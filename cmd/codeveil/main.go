package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/codeveil/codeveil/internal/cache"
	"github.com/codeveil/codeveil/internal/config"
	"github.com/codeveil/codeveil/internal/engine"
	"github.com/codeveil/codeveil/internal/server"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	// If root is specified and the config path is default, look for the
	// config in the root directory.
	if rootFlag := c.String("root"); rootFlag != "" && configPath == config.DefaultConfigName {
		configPath = filepath.Join(rootFlag, config.DefaultConfigName)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default()
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("resolving root path %q: %w", rootFlag, err)
		}
		cfg.Root = absRoot
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	// Log output goes to stderr, never stdout (MCP uses stdout for JSON-RPC).
	log.SetOutput(os.Stderr)

	app := &cli.App{
		Name:    "codeveil",
		Usage:   "Consistent cross-file identifier obfuscation for Objective-C and Swift projects",
		Version: engine.ToolVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   config.DefaultConfigName,
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g. --include '**/*.swift')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g. --exclude 'Pods/**')",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "obfuscate",
				Aliases: []string{"run"},
				Usage:   "Parse sources, build the rename map, and write obfuscated output",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Ignore the incremental cache and reprocess every file",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Compute the rename map without writing any output",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Deterministic seed for name generation",
					},
				},
				Action: runObfuscate,
			},
			{
				Name:   "symbols",
				Usage:  "Parse sources and print the extracted symbol table as JSON",
				Action: runSymbols,
			},
			{
				Name:   "status",
				Usage:  "Classify project files against the incremental cache",
				Action: runStatus,
			},
			{
				Name:   "watch",
				Usage:  "Watch the project and re-run incremental obfuscation on change",
				Action: runWatch,
			},
			{
				Name:   "serve",
				Usage:  "Run as an MCP server on stdio",
				Action: runServe,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("codeveil: %v", err)
	}
}

func runObfuscate(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	if c.IsSet("seed") {
		seed := c.Int64("seed")
		cfg.Naming.Seed = &seed
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	summary, err := eng.Run(c.Context, engine.Options{
		Force:  c.Bool("force"),
		DryRun: c.Bool("dry-run"),
		Progress: func(fraction float64, path string) {
			fmt.Fprintf(os.Stderr, "\r[%3.0f%%] %s", fraction*100, filepath.Base(path))
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)

	fmt.Fprintf(os.Stderr, "Obfuscation complete:\n")
	fmt.Fprintf(os.Stderr, "  Files found:   %d\n", summary.FilesFound)
	fmt.Fprintf(os.Stderr, "  Files parsed:  %d\n", summary.FilesParsed)
	fmt.Fprintf(os.Stderr, "  Symbols:       %d\n", summary.Symbols)
	fmt.Fprintf(os.Stderr, "  Names issued:  %d\n", summary.NamesIssued)
	fmt.Fprintf(os.Stderr, "  Replacements:  %d\n", summary.Replacements)
	fmt.Fprintf(os.Stderr, "  Duration:      %s\n", summary.Duration)
	fmt.Fprintf(os.Stderr, "  Output:        %s\n", summary.OutputDir)
	if len(summary.FileErrors) > 0 {
		fmt.Fprintf(os.Stderr, "  Files with errors: %d\n", len(summary.FileErrors))
	}
	return nil
}

func runSymbols(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	if _, err := eng.Run(c.Context, engine.Options{Force: true, DryRun: true}); err != nil {
		return err
	}

	data, err := json.MarshalIndent(eng.Store().AllSymbols(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runStatus(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return err
	}
	bc := cache.Load(root)
	if bc.IsFresh() {
		fmt.Println("no cache: next run processes every file")
	} else {
		fmt.Printf("cache version %s, %d tracked files, last build %s\n",
			bc.CacheVersion, bc.TotalFiles, bc.LastBuildTime.Format("2006-01-02 15:04:05"))
	}

	changes, err := eng.Classify()
	if err != nil {
		return err
	}
	counts := make(map[cache.ChangeState]int)
	for _, st := range changes {
		counts[st]++
	}
	fmt.Printf("added=%d modified=%d deleted=%d unchanged=%d\n",
		counts[cache.StateAdded], counts[cache.StateModified],
		counts[cache.StateDeleted], counts[cache.StateUnchanged])
	return nil
}

func runWatch(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	w, err := engine.NewWatcher(eng, nil)
	if err != nil {
		return err
	}
	return w.Watch(c.Context)
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	srv, err := server.New(eng, cfg)
	if err != nil {
		return err
	}
	return srv.Run(c.Context)
}
