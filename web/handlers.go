package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/robograph/urdf_browser/export"
	"github.com/robograph/urdf_browser/kinematics"
	"github.com/robograph/urdf_browser/webutils"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) HandlerRobot(w http.ResponseWriter, r *http.Request) {
	scene := s.Scene()
	if scene == nil {
		webutils.WriteError(w, errors.Errorf("No scene loaded"))
		return
	}
	webutils.WriteJson(w, scene.Tree)
}

func (s *Server) HandlerDocument(w http.ResponseWriter, r *http.Request) {
	scene := s.Scene()
	if scene == nil {
		webutils.WriteError(w, errors.Errorf("No scene loaded"))
		return
	}
	webutils.WriteJson(w, scene.Document)
}

func (s *Server) HandlerWarnings(w http.ResponseWriter, r *http.Request) {
	scene := s.Scene()
	if scene == nil {
		webutils.WriteError(w, errors.Errorf("No scene loaded"))
		return
	}
	webutils.WriteJson(w, scene.Warnings)
}

type nodeDetail struct {
	*kinematics.Node
	WorldTranslation [3]float32 `json:"world_translation"`
	Reachable        bool       `json:"reachable"`
	Triangles        int        `json:"triangles,omitempty"`
}

func (s *Server) HandlerNode(w http.ResponseWriter, r *http.Request) {
	scene := s.Scene()
	if scene == nil {
		webutils.WriteError(w, errors.Errorf("No scene loaded"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 0 || id >= len(scene.Tree.Nodes) {
		webutils.WriteError(w, errors.Errorf("Bad node id %q", mux.Vars(r)["id"]))
		return
	}

	node := scene.Tree.Node(kinematics.NodeId(id))
	pos, _ := scene.Tree.WorldPose(node.Id)

	detail := nodeDetail{
		Node:             node,
		WorldTranslation: pos,
		Reachable:        scene.Tree.Reachable(node.Id),
	}
	if node.Mesh != nil {
		detail.Triangles = node.Mesh.TriangleCount()
	}
	webutils.WriteJson(w, detail)
}

func (s *Server) HandlerExportGltf(w http.ResponseWriter, r *http.Request) {
	scene := s.Scene()
	if scene == nil {
		webutils.WriteError(w, errors.Errorf("No scene loaded"))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBinary(&buf, scene.Tree); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Gltf export failed"))
		return
	}

	name := scene.Tree.Name
	if name == "" {
		name = "robot"
	}
	webutils.WriteFile(w, &buf, fmt.Sprintf("%s.glb", name))
}

func (s *Server) HandlerStatusWs(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("ws upgrade failed")
		return
	}
	s.hub.Register(conn)
}
