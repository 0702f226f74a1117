package memory

import (
	"context"
	"fmt"
	"os"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Currency    string            `yaml:"currency"`
	Amount      int64             `yaml:"amount"`
	Image       string            `yaml:"image"`
	Category    string            `yaml:"category"`
	Subcategory string            `yaml:"subcategory"`
	Description string            `yaml:"description"`
	Attributes  map[string]string `yaml:"attributes"`
}

// NewRepoFromFile loads a YAML product seed into a fresh repo.
func NewRepoFromFile(ctx context.Context, path string) (*Repo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}

	repo := NewRepo()
	for i, sp := range f.Products {
		p := domain.Product{
			ID:          sp.ID,
			Name:        sp.Name,
			Price:       domain.Money{Currency: sp.Currency, Amount: sp.Amount},
			Image:       sp.Image,
			Category:    sp.Category,
			Subcategory: sp.Subcategory,
			Description: sp.Description,
			Attributes:  sp.Attributes,
		}
		if _, err := repo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("seed product %d: %w", i, err)
		}
	}
	return repo, nil
}
