package web

import (
	"context"
	"net/http"
	"os"
	"path"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/robograph/urdf_browser/kinematics"
	"github.com/robograph/urdf_browser/meshcache"
	"github.com/robograph/urdf_browser/status"
	"github.com/robograph/urdf_browser/urdf"
	"github.com/robograph/urdf_browser/vfs"
)

// Scene is one loaded document: the flat model, the assembled tree and
// everything that went wrong on the way. The mesh cache lives and dies
// with its scene, a reload starts from an empty cache.
type Scene struct {
	Document *urdf.Document
	Tree     *kinematics.Tree
	Warnings []kinematics.Warning
}

type Server struct {
	documentPath string
	fetcher      vfs.Fetcher
	opts         kinematics.Options
	hub          *status.Hub

	mu    sync.RWMutex
	scene *Scene
}

func NewServer(documentPath string, fetcher vfs.Fetcher, opts kinematics.Options) *Server {
	return &Server{
		documentPath: documentPath,
		fetcher:      fetcher,
		opts:         opts,
		hub:          status.NewHub(),
	}
}

func (s *Server) Scene() *Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene
}

// Reload fetches, parses and assembles the document, then swaps the
// served scene. A MalformedDocumentError keeps the previous scene.
func (s *Server) Reload(ctx context.Context) error {
	data, err := s.fetcher.Fetch(ctx, s.documentPath)
	if err != nil {
		return errors.Wrapf(err, "Failed to fetch document %q", s.documentPath)
	}

	doc, err := urdf.Parse(data)
	if err != nil {
		return errors.Wrapf(err, "Failed to parse document %q", s.documentPath)
	}

	cache := meshcache.NewCache(s.fetcher)
	tree, warnings, err := kinematics.Assemble(ctx, doc, cache, s.opts)
	if err != nil {
		return errors.Wrapf(err, "Assembly aborted for %q", s.documentPath)
	}

	s.mu.Lock()
	s.scene = &Scene{Document: doc, Tree: tree, Warnings: warnings}
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"robot":    doc.Name,
		"nodes":    len(tree.Nodes),
		"warnings": len(warnings),
		"meshes":   cache.Len(),
	}).Info("scene assembled")

	for _, w := range warnings {
		s.hub.Warning("%s", w.String())
	}
	s.hub.Reload("robot %q reassembled, %d nodes", doc.Name, len(tree.Nodes))

	return nil
}

// Watch re-parses the document whenever it is rewritten on disk. Only
// meaningful for filesystem documents.
func (s *Server) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrapf(err, "Failed to create watcher")
	}
	if err := watcher.Add(path.Dir(s.documentPath)); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "Failed to watch %q", s.documentPath)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != s.documentPath || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				log.WithField("event", ev.String()).Info("document changed, reloading")
				if err := s.Reload(ctx); err != nil {
					log.WithError(err).Error("reload failed, keeping previous scene")
					s.hub.Error("reload failed: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Error("watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (s *Server) Run(addr string) error {
	r := mux.NewRouter()
	r.HandleFunc("/json/robot", s.HandlerRobot)
	r.HandleFunc("/json/document", s.HandlerDocument)
	r.HandleFunc("/json/warnings", s.HandlerWarnings)
	r.HandleFunc("/json/node/{id}", s.HandlerNode)
	r.HandleFunc("/export/gltf", s.HandlerExportGltf)
	r.HandleFunc("/ws/status", s.HandlerStatusWs)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.WithField("addr", addr).Info("starting server")

	return http.ListenAndServe(addr, h)
}
