package rates

// ServiceFee is the flat booking fee added to every estimate
const ServiceFee = 4.99

// DefaultPerKgRate applies to services missing from the catalogue
const DefaultPerKgRate = 9.99

// Estimate is the cost preview shown before a booking is paid
type Estimate struct {
	Service    string  `json:"service" yaml:"service"`
	Weight     float64 `json:"weight" yaml:"weight"`
	PerKgRate  float64 `json:"perKgRate" yaml:"perKgRate"`
	WeightCost float64 `json:"weightCost" yaml:"weightCost"`
	ServiceFee float64 `json:"serviceFee" yaml:"serviceFee"`
	Total      float64 `json:"total" yaml:"total"`
}

// EstimateBooking prices a booking as weight × per-kg service rate plus the service fee
func EstimateBooking(service string, weight float64) Estimate {
	rate := DefaultPerKgRate
	if s, ok := LookupService(service); ok {
		rate = s.PerKgRate
	}
	weightCost := weight * rate
	return Estimate{
		Service:    service,
		Weight:     weight,
		PerKgRate:  rate,
		WeightCost: Round2(weightCost),
		ServiceFee: ServiceFee,
		Total:      Round2(weightCost + ServiceFee),
	}
}
