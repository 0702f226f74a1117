package serviceability

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNotServiceable = errors.New("pincode not serviceable")

type Estimate struct {
	Pincode      string
	DeliveryDays int
}

// Checker answers whether an address pincode can be delivered to. The table
// is loaded once at startup; lookups are read-only.
type Checker struct {
	byPincode map[string]Estimate
}

type configFile struct {
	Pincodes []struct {
		Pincode      string `yaml:"pincode"`
		DeliveryDays int    `yaml:"delivery_days"`
	} `yaml:"pincodes"`
}

func NewChecker(estimates []Estimate) *Checker {
	c := &Checker{byPincode: make(map[string]Estimate, len(estimates))}
	for _, e := range estimates {
		c.byPincode[e.Pincode] = e
	}
	return c
}

func NewCheckerFromFile(path string) (*Checker, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pincode table: %w", err)
	}

	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse pincode table: %w", err)
	}

	estimates := make([]Estimate, 0, len(f.Pincodes))
	for _, p := range f.Pincodes {
		days := p.DeliveryDays
		if days <= 0 {
			days = 7
		}
		estimates = append(estimates, Estimate{Pincode: p.Pincode, DeliveryDays: days})
	}
	return NewChecker(estimates), nil
}

// Check reports the delivery estimate for a pincode. ErrNotServiceable means
// the pincode is simply outside the delivery area, not a lookup failure.
func (c *Checker) Check(pincode string) (Estimate, error) {
	pincode = strings.TrimSpace(pincode)
	if pincode == "" {
		return Estimate{}, ErrNotServiceable
	}

	e, ok := c.byPincode[pincode]
	if !ok {
		return Estimate{}, ErrNotServiceable
	}
	return e, nil
}
