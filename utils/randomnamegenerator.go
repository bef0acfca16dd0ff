package utils

import (
	"fmt"
	"math/rand"

	"github.com/Pallinder/go-randomdata"
)

// RandomNameGenerator hands out unique silly names for document entities
// that came in without one (unnamed visuals mostly). Seeded to keep
// generated trees reproducible between runs over the same document.
type RandomNameGenerator map[string]struct{}

func (rng *RandomNameGenerator) RandomName(prefix string) string {
	if *rng == nil {
		*rng = make(map[string]struct{})
		randomdata.CustomRand(rand.New(rand.NewSource(0)))
	}
	for {
		name := randomdata.SillyName()
		if prefix != "" {
			name = fmt.Sprintf("%s_%s", prefix, name)
		}
		// avoid duplicate names
		if _, exists := (*rng)[name]; !exists {
			(*rng)[name] = struct{}{}
			return name
		}
	}
}
