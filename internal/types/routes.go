package types

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// RouteParams is a single entry of the static supported-pairs table.
type RouteParams struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	MinAmount string `yaml:"min_amount"`
	Disabled  bool   `yaml:"disabled"`
}

// Route is a validated, ready to use supported pair.
type Route struct {
	Source      TokenInfo
	Destination TokenInfo
	// MinAmount is the dust threshold expressed in source token units.
	MinAmount decimal.Decimal
}

type routeKey struct {
	from TokenSymbol
	to   TokenSymbol
}

type SupportedRoutes struct {
	Routes []*RouteParams `yaml:"routes"`

	index map[routeKey]*Route
}

// NewSupportedRoutes loads the supported-pairs table from a yaml file.
func NewSupportedRoutes(filePath string) (*SupportedRoutes, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseSupportedRoutes(data)
}

func ParseSupportedRoutes(data []byte) (*SupportedRoutes, error) {
	var routes SupportedRoutes
	if err := yaml.UnmarshalStrict(data, &routes); err != nil {
		return nil, err
	}
	if err := ValidateRoutes(&routes); err != nil {
		return nil, err
	}
	return &routes, nil
}

// ValidateRoutes validates the table and builds the lookup index.
func ValidateRoutes(r *SupportedRoutes) error {
	if len(r.Routes) == 0 {
		return fmt.Errorf("supported routes must have at least one route")
	}

	r.index = make(map[routeKey]*Route, len(r.Routes))
	for _, p := range r.Routes {
		source, err := LookupToken(p.From)
		if err != nil {
			return fmt.Errorf("invalid route source: %w", err)
		}
		destination, err := LookupToken(p.To)
		if err != nil {
			return fmt.Errorf("invalid route destination: %w", err)
		}
		if source.Symbol == destination.Symbol {
			return fmt.Errorf("route %s -> %s bridges a token to itself", p.From, p.To)
		}

		minAmount, err := decimal.NewFromString(p.MinAmount)
		if err != nil {
			return fmt.Errorf("invalid min_amount for route %s -> %s: %w", p.From, p.To, err)
		}
		if !minAmount.IsPositive() {
			return fmt.Errorf("min_amount for route %s -> %s must be positive", p.From, p.To)
		}
		if minAmount.Exponent() < -source.Decimals {
			return fmt.Errorf("min_amount for route %s -> %s is finer than %s precision", p.From, p.To, source.Symbol)
		}

		key := routeKey{from: source.Symbol, to: destination.Symbol}
		if _, exists := r.index[key]; exists {
			return fmt.Errorf("duplicated route %s -> %s", p.From, p.To)
		}
		if p.Disabled {
			continue
		}
		r.index[key] = &Route{
			Source:      source,
			Destination: destination,
			MinAmount:   minAmount,
		}
	}
	return nil
}

// Find returns the route for the given token symbols, or an error if the pair is not supported.
func (r *SupportedRoutes) Find(from, to string) (*Route, error) {
	source, err := LookupToken(from)
	if err != nil {
		return nil, err
	}
	destination, err := LookupToken(to)
	if err != nil {
		return nil, err
	}
	route, ok := r.index[routeKey{from: source.Symbol, to: destination.Symbol}]
	if !ok {
		return nil, fmt.Errorf("route %s -> %s is not supported", source.Symbol, destination.Symbol)
	}
	return route, nil
}

// Chains returns the set of chains referenced by enabled routes.
func (r *SupportedRoutes) Chains() []Chain {
	seen := make(map[Chain]bool)
	var chains []Chain
	for _, route := range r.index {
		for _, c := range []Chain{route.Source.Chain, route.Destination.Chain} {
			if !seen[c] {
				seen[c] = true
				chains = append(chains, c)
			}
		}
	}
	return chains
}
