package prefgraph

import "github.com/goliatone/go-prefgraph/service"

// Re-export the service package entry point so consumers can do
// `prefgraph.New(...)` without importing internal wiring helpers.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// New constructs the go-prefgraph runtime using the provided configuration.
func New(cfg Config) (*Service, error) {
	return service.New(cfg)
}
