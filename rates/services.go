package rates

// Service describes one shipping service offered on the site
type Service struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Description   string  `json:"description" yaml:"description"`
	EstimatedTime string  `json:"estimatedTime" yaml:"estimatedTime"`
	PriceRange    string  `json:"priceRange" yaml:"priceRange"`
	TransitDays   int     `json:"transitDays" yaml:"transitDays"`
	PerKgRate     float64 `json:"perKgRate" yaml:"perKgRate"`
}

const (
	ServiceRoad    = "road"
	ServiceAir     = "air"
	ServiceOcean   = "ocean"
	ServiceExpress = "express"
)

var services = []Service{
	{
		ID:            ServiceRoad,
		Name:          "Road Freight",
		Description:   "Reliable road transportation with nationwide coverage.",
		EstimatedTime: "3-5 days",
		PriceRange:    "₹5-15 per kg",
		TransitDays:   5,
		PerKgRate:     7.99,
	},
	{
		ID:            ServiceAir,
		Name:          "Air Freight",
		Description:   "Fast air freight services for time-sensitive shipments.",
		EstimatedTime: "1-2 days",
		PriceRange:    "₹15-30 per kg",
		TransitDays:   2,
		PerKgRate:     19.99,
	},
	{
		ID:            ServiceOcean,
		Name:          "Ocean Freight",
		Description:   "Cost-effective ocean shipping for larger cargo.",
		EstimatedTime: "15-30 days",
		PriceRange:    "₹3-8 per kg",
		TransitDays:   30,
		PerKgRate:     5.99,
	},
	{
		ID:            ServiceExpress,
		Name:          "Express Delivery",
		Description:   "Premium express delivery for urgent shipments.",
		EstimatedTime: "Next day",
		PriceRange:    "₹25-40 per kg",
		TransitDays:   1,
		PerKgRate:     29.99,
	},
}

// Services returns the service catalogue in display order
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// LookupService finds a service by id
func LookupService(id string) (Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// City is a selectable origin or destination
type City struct {
	Name    string `json:"name" yaml:"name"`
	Country string `json:"country" yaml:"country"`
}

var cities = []City{
	{"New York", "United States"},
	{"Los Angeles", "United States"},
	{"Chicago", "United States"},
	{"Houston", "United States"},
	{"Phoenix", "United States"},
	{"Philadelphia", "United States"},
	{"San Antonio", "United States"},
	{"San Diego", "United States"},
	{"Dallas", "United States"},
	{"San Jose", "United States"},
	{"Toronto", "Canada"},
	{"Montreal", "Canada"},
	{"Vancouver", "Canada"},
	{"London", "United Kingdom"},
	{"Paris", "France"},
	{"Berlin", "Germany"},
	{"Tokyo", "Japan"},
	{"Sydney", "Australia"},
}

func Cities() []City {
	out := make([]City, len(cities))
	copy(out, cities)
	return out
}
