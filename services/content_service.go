package services

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mysupport/mysupport/models"
)

//go:embed content/catalogue.yaml
var catalogueYAML []byte

// ContentService serves the static content catalogue.
type ContentService interface {
	Catalogue() *models.ContentCatalogue
}

type contentService struct {
	catalogue *models.ContentCatalogue
}

// NewContentService parses the embedded catalogue.
func NewContentService() (ContentService, error) {
	return NewContentServiceFromYAML(catalogueYAML)
}

// NewContentServiceFromYAML parses a catalogue document.
func NewContentServiceFromYAML(data []byte) (ContentService, error) {
	var catalogue models.ContentCatalogue
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to parse content catalogue: %w", err)
	}
	return &contentService{catalogue: &catalogue}, nil
}

func (s *contentService) Catalogue() *models.ContentCatalogue {
	return s.catalogue
}
