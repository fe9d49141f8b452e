package catalog

import (
	"github.com/cockroachdb/errors"

	"github.com/assetgate/assetgate/internal/das"
	"github.com/assetgate/assetgate/internal/registry"
)

// Register installs the full catalog into reg. A registration failure is
// a build-time defect (duplicate name, malformed shape) and aborts
// startup.
func Register(reg *registry.Registry, querier das.Querier, fetcher DocumentFetcher) error {
	for _, def := range Tools(querier) {
		if err := reg.RegisterTool(def); err != nil {
			return errors.Wrapf(err, "registering tool %q", def.Name)
		}
	}
	for _, def := range Resources(fetcher) {
		if err := reg.RegisterResource(def); err != nil {
			return errors.Wrapf(err, "registering resource %q", def.URI)
		}
	}
	for _, def := range Prompts() {
		if err := reg.RegisterPrompt(def); err != nil {
			return errors.Wrapf(err, "registering prompt %q", def.Name)
		}
	}
	return nil
}
