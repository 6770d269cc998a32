package registry

import "strings"

// MatchTemplate matches a URI against an RFC 6570 level-1 style template
// such as letta://agents/{agent_id}/memory. On a match it returns the values
// captured by each placeholder. Placeholders match exactly one path segment.
func MatchTemplate(template, uri string) (map[string]string, bool) {
	templateParts := strings.Split(template, "/")
	uriParts := strings.Split(uri, "/")
	if len(templateParts) != len(uriParts) {
		return nil, false
	}
	params := make(map[string]string)
	for i, part := range templateParts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			name := part[1 : len(part)-1]
			if uriParts[i] == "" {
				return nil, false
			}
			params[name] = uriParts[i]
			continue
		}
		if part != uriParts[i] {
			return nil, false
		}
	}
	return params, true
}
