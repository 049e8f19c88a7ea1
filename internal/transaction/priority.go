package transaction

import "fmt"

// PriorityLevel is a named compute-budget preset.
type PriorityLevel string

const (
	PriorityLow     PriorityLevel = "low"
	PriorityMedium  PriorityLevel = "medium"
	PriorityHigh    PriorityLevel = "high"
	PriorityExtreme PriorityLevel = "extreme"
)

// Budget is a compute-unit price and limit pair.
type Budget struct {
	UnitPrice uint64 // micro-lamports per CU
	UnitLimit uint32
}

var priorityProfiles = map[PriorityLevel]Budget{
	PriorityLow:     {UnitPrice: 1_000, UnitLimit: 200_000},
	PriorityMedium:  {UnitPrice: 5_000, UnitLimit: 400_000},
	PriorityHigh:    {UnitPrice: 10_000, UnitLimit: 800_000},
	PriorityExtreme: {UnitPrice: 50_000, UnitLimit: 1_000_000},
}

// ParsePriority validates a level name. Empty means no preset.
func ParsePriority(s string) (PriorityLevel, error) {
	if s == "" {
		return "", nil
	}
	level := PriorityLevel(s)
	if _, ok := priorityProfiles[level]; !ok {
		return "", fmt.Errorf("unknown priority level: %s", s)
	}
	return level, nil
}

// ResolveBudget fills the zero fields of explicit from the level preset.
// Explicit values always win.
func ResolveBudget(level PriorityLevel, explicit Budget) Budget {
	preset, ok := priorityProfiles[level]
	if !ok {
		return explicit
	}
	if explicit.UnitPrice == 0 {
		explicit.UnitPrice = preset.UnitPrice
	}
	if explicit.UnitLimit == 0 {
		explicit.UnitLimit = preset.UnitLimit
	}
	return explicit
}
