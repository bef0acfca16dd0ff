package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the viewer configuration file. Every field has a flag
// override in main; the file is optional.
type Config struct {
	// Listen is the http server address.
	Listen string `yaml:"listen"`
	// Document is the robot description to load.
	Document string `yaml:"document"`
	// MeshBase overrides the base location relative mesh references
	// resolve against; defaults to the document's directory.
	MeshBase string `yaml:"mesh_base"`
	// Packages maps package identifiers to directories or urls.
	Packages map[string]string `yaml:"packages"`
	// RootRPY is a static whole-robot reorientation in radians, for
	// up-axis conventions ("1.5708 0 0" style triple).
	RootRPY string `yaml:"root_rpy"`
	// Watch re-parses the document when it changes on disk.
	Watch bool `yaml:"watch"`
}

func Default() *Config {
	return &Config{
		Listen: ":8000",
		Watch:  true,
	}
}

func Load(path string) (*Config, error) {
	c := Default()

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	return c, nil
}
