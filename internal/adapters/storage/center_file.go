package storage

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/repositories"
	apperrors "github.com/banjirlab/relief-assistant/pkg/errors"
)

// centerRecord is the on-disk shape of one evacuation center.
type centerRecord struct {
	Name         string   `yaml:"name" json:"name"`
	Lat          float64  `yaml:"lat" json:"lat"`
	Lon          float64  `yaml:"lon" json:"lon"`
	Capabilities []string `yaml:"capabilities" json:"capabilities"`
}

type centerFile struct {
	Centers []centerRecord `yaml:"centers" json:"centers"`
}

// FileCenterSource implements CenterSource over a YAML or JSON file.
type FileCenterSource struct {
	path string
}

// NewFileCenterSource creates a center source reading from path.
func NewFileCenterSource(path string) repositories.CenterSource {
	return &FileCenterSource{path: path}
}

// Load reads the center directory. Records without a name are skipped;
// records without coordinates load with the zero location and are excluded
// from ranking downstream.
func (s *FileCenterSource) Load(ctx context.Context) ([]entities.Center, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read center file", err)
	}

	var file centerFile
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".json":
		err = json.Unmarshal(data, &file)
	default:
		return nil, apperrors.NewValidationError("center file must be .yaml, .yml, or .json")
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to parse center file", err)
	}

	centers := make([]entities.Center, 0, len(file.Centers))
	for _, record := range file.Centers {
		name := strings.TrimSpace(record.Name)
		if name == "" {
			log.Printf("Warning: skipping center record with no name in %s", s.path)
			continue
		}
		centers = append(centers, entities.Center{
			Name:         name,
			Location:     entities.Location{Latitude: record.Lat, Longitude: record.Lon},
			Capabilities: record.Capabilities,
		})
	}
	return centers, nil
}
