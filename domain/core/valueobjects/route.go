package valueobjects

import (
	"errors"
	"strings"
)

// RouteTemplate is a value object for an API binding's path template.
// Templates are slash-separated; a segment starting with ':' names a path
// parameter that matches any single non-empty segment.
type RouteTemplate struct {
	raw      string
	segments []routeSegment
}

type routeSegment struct {
	literal string
	param   string // set when the segment is a :name parameter
}

// ParseRouteTemplate parses a raw template string
func ParseRouteTemplate(raw string) (RouteTemplate, error) {
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return RouteTemplate{}, errors.New("route template must start with '/'")
	}

	parts := splitPath(raw)
	segments := make([]routeSegment, 0, len(parts))
	for _, part := range parts {
		if strings.HasPrefix(part, ":") {
			name := part[1:]
			if name == "" {
				return RouteTemplate{}, errors.New("route parameter must have a name")
			}
			segments = append(segments, routeSegment{param: name})
			continue
		}
		segments = append(segments, routeSegment{literal: part})
	}

	return RouteTemplate{raw: raw, segments: segments}, nil
}

// String returns the raw template
func (t RouteTemplate) String() string {
	return t.raw
}

// IsZero checks if the template is the zero value
func (t RouteTemplate) IsZero() bool {
	return t.raw == ""
}

// LiteralCount returns the number of non-parameter segments, used for
// most-specific-wins route selection
func (t RouteTemplate) LiteralCount() int {
	count := 0
	for _, seg := range t.segments {
		if seg.param == "" {
			count++
		}
	}
	return count
}

// Match checks a concrete request path against the template. On success it
// returns the bound path parameters.
func (t RouteTemplate) Match(path string) (map[string]string, bool) {
	parts := splitPath(path)
	if len(parts) != len(t.segments) {
		return nil, false
	}

	params := map[string]string{}
	for i, seg := range t.segments {
		if seg.param != "" {
			if parts[i] == "" {
				return nil, false
			}
			params[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}

	return params, true
}

// splitPath splits a path into segments, treating "/" as zero segments so
// that the root template matches the root path
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
