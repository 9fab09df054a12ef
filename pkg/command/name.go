package command

import "strings"

// FullName builds the fully qualified, dot-prefixed command name from a
// namespace and a name.
//
// A dot-prefixed name is returned verbatim when the namespace is empty or the
// name already contains more than one dot. Otherwise the dot-prefixed
// namespace is joined with the name stripped of its leading dot.
func FullName(namespace, name string) string {
	if strings.HasPrefix(name, ".") && (namespace == "" || strings.Count(name, ".") > 1) {
		return name
	}

	bare := strings.TrimPrefix(name, ".")
	if namespace == "" {
		return "." + bare
	}
	if !strings.HasPrefix(namespace, ".") {
		namespace = "." + namespace
	}
	return strings.TrimSuffix(namespace, ".") + "." + bare
}

// JoinPath returns the fully qualified name for parsed command path
// segments. An empty path yields the empty string.
func JoinPath(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return "." + strings.Join(segments, ".")
}

// validSegment reports whether s is a legal command name segment: a letter
// or underscore followed by letters, digits or underscores.
func validSegment(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// validDotted reports whether s is a dot-prefixed sequence of valid segments.
func validDotted(s string) bool {
	if !strings.HasPrefix(s, ".") {
		return false
	}
	for _, seg := range strings.Split(s[1:], ".") {
		if !validSegment(seg) {
			return false
		}
	}
	return true
}
