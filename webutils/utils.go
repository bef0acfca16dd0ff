package webutils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func WriteFileHeaders(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func WriteFile(w http.ResponseWriter, in io.Reader, name string) {
	WriteFileHeaders(w, name)
	io.Copy(w, in)
}

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to marshal"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(res)
}

func WriteError(w http.ResponseWriter, err error) {
	log.WithError(err).Error("request failed")
	w.WriteHeader(http.StatusInternalServerError)
	WriteJson(w, map[string]string{"error": err.Error()})
}
