package main

import (
	"context"
	"flag"
	"log"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/robograph/urdf_browser/config"
	"github.com/robograph/urdf_browser/kinematics"
	"github.com/robograph/urdf_browser/utils"
	"github.com/robograph/urdf_browser/vfs"
	"github.com/robograph/urdf_browser/web"
)

func main() {
	var addr, cfgPath, document, meshBase, rootRPY string
	var dumpTree, noWatch bool
	flag.StringVar(&addr, "i", "", "Address of server")
	flag.StringVar(&cfgPath, "c", "", "Path to yaml config with package mappings")
	flag.StringVar(&document, "urdf", "", "Path to robot description document")
	flag.StringVar(&meshBase, "meshbase", "", "Base path for relative mesh references (default: document directory)")
	flag.StringVar(&rootRPY, "rootrpy", "", "Whole-robot reorientation, radians, 'r p y'")
	flag.BoolVar(&dumpTree, "dumptree", false, "Dump assembled tree to log and exit")
	flag.BoolVar(&noWatch, "nowatch", false, "Disable document change watching")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			log.Fatal(err)
		}
	}
	if addr != "" {
		cfg.Listen = addr
	}
	if document != "" {
		cfg.Document = document
	}
	if meshBase != "" {
		cfg.MeshBase = meshBase
	}
	if rootRPY != "" {
		cfg.RootRPY = rootRPY
	}
	if noWatch {
		cfg.Watch = false
	}

	if cfg.Document == "" {
		flag.PrintDefaults()
		return
	}

	docPath := cfg.Document
	if !strings.HasPrefix(docPath, "http://") && !strings.HasPrefix(docPath, "https://") {
		abs, err := filepath.Abs(docPath)
		if err != nil {
			log.Fatal(err)
		}
		docPath = filepath.ToSlash(abs)
	}

	base := cfg.MeshBase
	if base == "" {
		base = path.Dir(docPath)
	}

	opts := kinematics.Options{
		MeshBase: base,
		Packages: cfg.Packages,
	}
	if cfg.RootRPY != "" {
		opts.RootRPY = utils.ParseTriple(cfg.RootRPY, mgl32.Vec3{})
	}

	server := web.NewServer(docPath, vfs.NewAutoDriver(base), opts)

	ctx := context.Background()
	if err := server.Reload(ctx); err != nil {
		log.Fatal(err)
	}

	if dumpTree {
		utils.LogDump(server.Scene().Tree)
		return
	}

	if cfg.Watch {
		if err := server.Watch(ctx); err != nil {
			log.Printf("[main] watch disabled: %v", err)
		}
	}

	if err := server.Run(cfg.Listen); err != nil {
		log.Fatal(err)
	}
}
