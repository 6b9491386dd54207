package domain

// StatsRow is the parent-only projection the stats aggregator reads.
type StatsRow struct {
	Status     Status
	Price      float64
	Kilometers float64
}

// Stats summarizes a filtered set of services.
// TotalRevenue and AveragePrice only count completed services;
// TotalKilometers counts every matched service.
type Stats struct {
	Total           int
	Completed       int
	Pending         int
	Cancelled       int
	TotalRevenue    float64
	AveragePrice    float64
	TotalKilometers float64
}
