package constants

// Plausibility bounds for extracted measurements. Values outside these
// ranges are treated as extraction noise and nulled, not emitted.
const (
	MaxAreaHectares  = 10000 // largest believable single-line area, ha
	MaxYieldCentners = 100   // largest believable yield, c/ha
)
