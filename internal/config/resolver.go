package config

import "slices"

// Resolve returns the configured module IDs sorted alphabetically. The
// app provisions and starts modules in this order, which is what lets
// the bot publish its services before the gateway resolves them.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
