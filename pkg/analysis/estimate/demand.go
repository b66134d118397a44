package estimate

// availability is the probability that a node with the given demand is
// free. Demand is an expected utilization and can exceed 1 on congested
// nodes; anything at or above 1 means certain blockage.
func availability(demand float64) float64 {
	if demand >= 1 {
		return 0
	}
	if demand <= 0 {
		return 1
	}
	return 1 - demand
}

// blockage is the complement of availability.
func blockage(demand float64) float64 {
	return 1 - availability(demand)
}
