package scenario

import (
	"fmt"

	"github.com/achilleasa/radiance/config"
)

// Variant is a named scenario derived from a base config.
type Variant struct {
	Name   string
	Config config.Config
}

// ProvisioningVariants derives scenarios in which the workload path length
// changes by each of the given factors at frame at. Factors below 1 leave the
// controller under-provisioned after the change; factors above 1
// over-provisioned.
func ProvisioningVariants(base config.Config, at uint64, factors ...float64) []Variant {
	variants := make([]Variant, 0, len(factors))
	for _, factor := range factors {
		cfg := base
		cfg.Events = append(append([]config.Event(nil), base.Events...), config.Event{
			Frame:      at,
			Kind:       config.PathLength,
			PathLength: base.Workload.PathLength * factor,
		})

		kind := "over"
		if factor < 1 {
			kind = "under"
		}
		cfg.Name = fmt.Sprintf("%s-%s-x%g", base.Name, kind, factor)
		variants = append(variants, Variant{Name: cfg.Name, Config: cfg})
	}
	return variants
}
