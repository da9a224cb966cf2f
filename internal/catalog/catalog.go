// Package catalog loads categories, suppliers and products from YAML files.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Categories []CategoryEntry `yaml:"categories"`
	Suppliers  []SupplierEntry `yaml:"suppliers"`
	Products   []ProductEntry  `yaml:"products"`
}

type CategoryEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type SupplierEntry struct {
	Name    string `yaml:"name"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
}

// ProductEntry refers to its category and supplier by name.
type ProductEntry struct {
	Name          string `yaml:"name"`
	SKU           string `yaml:"sku"`
	Category      string `yaml:"category"`
	Supplier      string `yaml:"supplier"`
	PurchasePrice Money  `yaml:"purchase_price"`
	SalePrice     Money  `yaml:"sale_price"`
	Quantity      int    `yaml:"quantity"`
	MinQuantity   int    `yaml:"min_quantity"`
}

// Money reads a YAML scalar as an exact decimal.
type Money struct {
	decimal.Decimal
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: price must be a number", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid price %q", node.Line, node.Value)
	}
	m.Decimal = d
	return nil
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a catalog document. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) check() error {
	skus := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		if p.SKU == "" || p.Name == "" {
			return fmt.Errorf("product %d: name and sku are required", i+1)
		}
		if skus[p.SKU] {
			return fmt.Errorf("product %d: sku %s appears twice", i+1, p.SKU)
		}
		skus[p.SKU] = true
		if p.Quantity < 0 || p.MinQuantity < 0 {
			return fmt.Errorf("product %s: quantities cannot be negative", p.SKU)
		}
		if p.SalePrice.IsNegative() || p.PurchasePrice.IsNegative() {
			return fmt.Errorf("product %s: prices cannot be negative", p.SKU)
		}
	}
	return nil
}
