// Package catalog defines the gateway's registered tools, resources, and
// prompts: typed passthroughs to the DAS query client plus the static
// documentation resources and prompt templates.
package catalog

import (
	"github.com/assetgate/assetgate/internal/das"
)

// The args helpers read from maps the schema validator has already
// checked, so declared fields have the right JSON types; the defaults
// only cover optional fields that were omitted.

func stringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

func boolArg(args map[string]any, name string) bool {
	v, _ := args[name].(bool)
	return v
}

// intArg handles JSON numbers, which decode as float64.
func intArg(args map[string]any, name string) int {
	v, ok := args[name].(float64)
	if !ok {
		return 0
	}
	return int(v)
}

func stringSliceArg(args map[string]any, name string) []string {
	raw, ok := args[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func pageArg(args map[string]any) das.Page {
	return das.Page{
		Page:  intArg(args, "page"),
		Limit: intArg(args, "limit"),
	}
}
