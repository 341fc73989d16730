package sched

// Utilization returns Σ cost/period over the task set.
func Utilization(tasks []TaskConfig) float64 {
	var u float64
	for _, t := range tasks {
		if t.Period == 0 {
			continue
		}
		u += float64(t.Cost) / float64(t.Period)
	}
	return u
}

// Density returns Σ cost/min(deadline, period) over the task set.
func Density(tasks []TaskConfig) float64 {
	var d float64
	for _, t := range tasks {
		den := t.Period
		if t.Deadline != 0 && t.Deadline < den {
			den = t.Deadline
		}
		if den == 0 {
			continue
		}
		d += float64(t.Cost) / float64(den)
	}
	return d
}

// Feasible reports whether EDF can schedule the task set on one core. With
// implicit deadlines the utilization bound is exact; with constrained
// deadlines the density bound is sufficient only.
func Feasible(tasks []TaskConfig) bool {
	return Density(tasks) <= 1
}
