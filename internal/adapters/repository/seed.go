package repository

import (
	_ "embed"
	"fmt"

	"github.com/okian/carwise/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed garages.yaml
var embeddedGarages []byte

// DefaultGarages returns the built-in garage directory.
func DefaultGarages() ([]model.Garage, error) {
	return ParseGarages(embeddedGarages)
}

// ParseGarages decodes a YAML list of garages.
func ParseGarages(data []byte) ([]model.Garage, error) {
	var garages []model.Garage
	if err := yaml.Unmarshal(data, &garages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	for i, g := range garages {
		if g.ID == "" || g.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no id or name", ErrInvalidSeed, i)
		}
	}
	return garages, nil
}
