// outlinebake is a CLI utility that bakes outline meshes from OBJ files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/assets"
	"github.com/Faultbox/midgard-outline/internal/config"
	"github.com/Faultbox/midgard-outline/internal/engine/mesh"
	"github.com/Faultbox/midgard-outline/internal/logger"
	"github.com/Faultbox/midgard-outline/internal/outline/bake"
	"github.com/Faultbox/midgard-outline/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "bake", "b":
		err = cmdBake(args)
	case "info", "i":
		err = cmdInfo(args)
	case "watch", "w":
		err = cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`outlinebake - outline mesh baker

Usage:
  outlinebake <command> [options]

Commands:
  bake [-o dir] [-reuse] <mesh.obj>...   Bake outline meshes (.omsh)
  info <file.omsh>...                    Show outline mesh information
  watch [-o dir] [-reuse] <mesh.obj>     Re-bake whenever the source changes

Common options:
  -config <path>   Config file (default: ./outline.yaml)
  -debug           Enable debug logging

Examples:
  outlinebake bake -o outlines models/crate.obj models/barrel.obj
  outlinebake info outlines/crate_Outline.omsh
  outlinebake watch models/crate.obj`)
}

// bakeOptions are the flags shared by bake and watch.
type bakeOptions struct {
	store *assets.Store
	reuse bool
}

func parseBakeFlags(name string, args []string) (*bakeOptions, []string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	outDir := fs.String("o", "", "Output directory (default from config)")
	reuse := fs.Bool("reuse", false, "Copy the source mesh instead of welding normals")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return nil, nil, err
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	dir := cfg.Bake.OutputDir
	if *outDir != "" {
		dir = *outDir
	}
	return &bakeOptions{
		store: assets.NewStore(dir),
		reuse: cfg.Bake.Reuse || *reuse,
	}, fs.Args(), nil
}

func cmdBake(args []string) error {
	opts, files, err := parseBakeFlags("bake", args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("usage: outlinebake bake [-o dir] [-reuse] <mesh.obj>...")
	}

	var srcs []*mesh.Mesh
	var failed int
	for _, path := range files {
		m, err := assets.LoadMesh(path)
		if err != nil {
			logger.Error("failed to load mesh", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		srcs = append(srcs, m)
	}

	baked := make([]*mesh.Mesh, 0, len(srcs))
	if opts.reuse {
		for _, src := range srcs {
			m, err := bake.Reuse(src)
			if err != nil {
				logger.Error("failed to reuse mesh", zap.String("mesh", src.Name), zap.Error(err))
				failed++
				continue
			}
			baked = append(baked, m)
		}
	} else {
		var failures []bake.Failure
		baked, failures = bake.BakeAll(srcs)
		for _, f := range failures {
			logger.Error("failed to bake mesh", zap.String("mesh", f.Name), zap.Error(f.Err))
		}
		failed += len(failures)
	}

	for _, m := range baked {
		if m == nil {
			continue
		}
		path, err := opts.store.SaveOutlineMesh(m, strings.TrimSuffix(m.Name, assets.OutlineSuffix))
		if err != nil {
			logger.Error("failed to save outline mesh", zap.String("mesh", m.Name), zap.Error(err))
			failed++
			continue
		}
		fmt.Printf("%s -> %s (%d vertices, %d triangles)\n", m.Name, path, m.VertexCount(), m.TriangleCount())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d meshes failed", failed, len(files))
	}
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: outlinebake info <file.omsh>...")
	}

	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		h, err := formats.ReadOMSHHeader(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		m, err := formats.LoadOMSH(path)
		if err != nil {
			return err
		}

		b := m.Bounds()
		fmt.Printf("File:      %s\n", path)
		fmt.Printf("Version:   %d.%d\n", h.Major, h.Minor)
		fmt.Printf("Name:      %s\n", m.Name)
		fmt.Printf("Vertices:  %d\n", m.VertexCount())
		fmt.Printf("UVs:       %t\n", len(m.UVs) > 0)
		fmt.Printf("Bounds:    center %v, size %v\n", b.Center, b.Size())
		fmt.Printf("Sub-meshes:\n")
		for i, sm := range m.SubMeshes {
			fmt.Printf("  [%d] %-9s %d indices\n", i, sm.Topology, len(sm.Indices))
		}
		fmt.Println()
	}
	return nil
}

func cmdWatch(args []string) error {
	opts, files, err := parseBakeFlags("watch", args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return errors.New("usage: outlinebake watch [-o dir] [-reuse] <mesh.obj>")
	}
	src, err := filepath.Abs(files[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(src)); err != nil {
		return err
	}

	rebake := func() {
		path, err := bakeFile(opts, src)
		if err != nil {
			logger.Error("bake failed", zap.String("source", src), zap.Error(err))
			return
		}
		logger.Info("baked", zap.String("source", src), zap.String("output", path))
	}
	rebake()

	// Saves arrive as bursts of events; bake once they settle.
	const settle = 200 * time.Millisecond
	timer := time.NewTimer(settle)
	timer.Stop()

	logger.Info("watching", zap.String("source", src))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != src {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			rebake()
		}
	}
}

// bakeFile loads, bakes and saves one source mesh.
func bakeFile(opts *bakeOptions, path string) (string, error) {
	src, err := assets.LoadMesh(path)
	if err != nil {
		return "", err
	}
	var m *mesh.Mesh
	if opts.reuse {
		m, err = bake.Reuse(src)
	} else {
		m, err = bake.Bake(src)
	}
	if err != nil {
		return "", err
	}
	return opts.store.SaveOutlineMesh(m, src.Name)
}
