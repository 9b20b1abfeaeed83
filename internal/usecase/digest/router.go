package digest

import (
	"sort"
	"strings"

	"arxiv-digest/internal/domain/entity"
)

// Router maps relation category tags to channel names.
// Tags are matched case-insensitively.
type Router struct {
	routes map[string][]string
}

// NewRouter builds a router from a category → channel names table.
func NewRouter(routes map[string][]string) *Router {
	r := &Router{routes: make(map[string][]string, len(routes))}
	for category, channels := range routes {
		key := strings.ToLower(strings.TrimSpace(category))
		if key == "" {
			continue
		}
		r.routes[key] = append(r.routes[key], channels...)
	}
	return r
}

// Channels returns the channels rel should be posted to, in category order,
// each channel at most once. An empty result means the paper is unrouted.
func (r *Router) Channels(rel entity.Relation) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tag := range rel.Categories {
		for _, channel := range r.routes[strings.ToLower(tag)] {
			if _, dup := seen[channel]; dup {
				continue
			}
			seen[channel] = struct{}{}
			out = append(out, channel)
		}
	}
	return out
}

// Categories returns the routed category tags, sorted.
func (r *Router) Categories() []string {
	out := make([]string, 0, len(r.routes))
	for category := range r.routes {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// ChannelNames returns every channel referenced by a route, sorted.
func (r *Router) ChannelNames() []string {
	seen := make(map[string]struct{})
	for _, channels := range r.routes {
		for _, c := range channels {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
