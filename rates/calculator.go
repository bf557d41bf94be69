package rates

import (
	"errors"
	"math"
)

// VolumetricDivisor converts cubic centimetres to volumetric kilograms
const VolumetricDivisor = 5000.0

// DefaultDistanceKm is used for city pairs missing from the distance table
const DefaultDistanceKm = 1000.0

var (
	ErrMissingLocation = errors.New("origin and destination are required")
	ErrInvalidPackage  = errors.New("weight and dimensions must be positive")
)

// Profile is the pricing profile of one service
type Profile struct {
	BaseRate         float64 `json:"baseRate" yaml:"baseRate"`
	PerKm            float64 `json:"perKm" yaml:"perKm"`
	WeightMultiplier float64 `json:"weightMultiplier" yaml:"weightMultiplier"`
}

// profileOrder keeps quote output stable
var profileOrder = []string{ServiceRoad, ServiceAir, ServiceOcean, ServiceExpress}

var profiles = map[string]Profile{
	ServiceRoad:    {BaseRate: 5.99, PerKm: 0.25, WeightMultiplier: 0.1},
	ServiceAir:     {BaseRate: 15.99, PerKm: 0.75, WeightMultiplier: 0.3},
	ServiceOcean:   {BaseRate: 8.99, PerKm: 0.15, WeightMultiplier: 0.2},
	ServiceExpress: {BaseRate: 19.99, PerKm: 0.5, WeightMultiplier: 0.25},
}

// distances in kilometres, looked up in both directions
var distances = map[string]map[string]float64{
	"New York": {
		"Los Angeles": 3940,
		"Chicago":     1270,
		"Houston":     2270,
		"London":      5570,
		"Toronto":     800,
	},
	"Los Angeles": {
		"New York":      3940,
		"Chicago":       2800,
		"San Francisco": 620,
		"Tokyo":         8800,
	},
}

// QuoteRequest is the calculator input; dimensions are in centimetres, weight in kg
type QuoteRequest struct {
	Origin      string  `json:"origin" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	Weight      float64 `json:"weight" binding:"required,gt=0"`
	Length      float64 `json:"length" binding:"required,gt=0"`
	Width       float64 `json:"width" binding:"required,gt=0"`
	Height      float64 `json:"height" binding:"required,gt=0"`
}

// Rate is the cost of one service for a quote
type Rate struct {
	Service string  `json:"service" yaml:"service"`
	Cost    float64 `json:"cost" yaml:"cost"`
}

type Quote struct {
	Origin           string  `json:"origin" yaml:"origin"`
	Destination      string  `json:"destination" yaml:"destination"`
	DistanceKm       float64 `json:"distance" yaml:"distance"`
	VolumetricWeight float64 `json:"volumetricWeight" yaml:"volumetricWeight"`
	ChargeableWeight float64 `json:"chargeableWeight" yaml:"chargeableWeight"`
	Rates            []Rate  `json:"rates" yaml:"rates"`
}

// Cost returns the quoted cost for a service
func (q Quote) Cost(service string) (float64, bool) {
	for _, r := range q.Rates {
		if r.Service == service {
			return r.Cost, true
		}
	}
	return 0, false
}

func VolumetricWeight(length, width, height float64) float64 {
	return length * width * height / VolumetricDivisor
}

// ChargeableWeight is the larger of the actual and volumetric weight
func ChargeableWeight(actual, length, width, height float64) float64 {
	return math.Max(actual, VolumetricWeight(length, width, height))
}

// Distance returns the road distance between two cities
func Distance(from, to string) float64 {
	if from == to {
		return 0
	}
	if d, ok := distances[from][to]; ok {
		return d
	}
	if d, ok := distances[to][from]; ok {
		return d
	}
	return DefaultDistanceKm
}

// ProfileFor returns the pricing profile of a service
func ProfileFor(service string) (Profile, bool) {
	p, ok := profiles[service]
	return p, ok
}

// Calculate prices a package for every service profile
func Calculate(req QuoteRequest) (Quote, error) {
	if req.Origin == "" || req.Destination == "" {
		return Quote{}, ErrMissingLocation
	}
	if req.Weight <= 0 || req.Length <= 0 || req.Width <= 0 || req.Height <= 0 {
		return Quote{}, ErrInvalidPackage
	}

	dist := Distance(req.Origin, req.Destination)
	chargeable := ChargeableWeight(req.Weight, req.Length, req.Width, req.Height)

	q := Quote{
		Origin:           req.Origin,
		Destination:      req.Destination,
		DistanceKm:       dist,
		VolumetricWeight: VolumetricWeight(req.Length, req.Width, req.Height),
		ChargeableWeight: chargeable,
		Rates:            make([]Rate, 0, len(profileOrder)),
	}
	for _, service := range profileOrder {
		p := profiles[service]
		cost := p.BaseRate + dist*p.PerKm + chargeable*p.WeightMultiplier
		q.Rates = append(q.Rates, Rate{Service: service, Cost: Round2(cost)})
	}
	return q, nil
}

// Round2 rounds to cents
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
