// Package slug turns free-form labels into the stable identifier space shared
// by every oracle.
package slug

import (
	"strings"
)

const (
	conceptPrefix = "/c/en/"
	isARelation   = "/r/IsA"
)

// Canonicalize lowercases text, collapses every run of characters outside
// [a-z0-9_] into a single separator and joins the remaining words with
// underscores. An empty result means the input carried no usable identifier.
func Canonicalize(text string) string {
	var b strings.Builder
	pending := false

	for _, r := range strings.ToLower(text) {
		if !isSlugRune(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte('_')
		}
		pending = false
		b.WriteRune(r)
	}

	return b.String()
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

// IsCompound reports whether s is already in namespaced form.
func IsCompound(s string) bool {
	return strings.Contains(s, "/")
}

// Concept expands a bare label to its namespaced concept form
// (/c/en/<name>/n/<name>). Labels that are already namespaced are returned
// trimmed but otherwise untouched.
func Concept(label string) string {
	if IsCompound(label) {
		return strings.TrimSpace(label)
	}
	name := Canonicalize(label)
	if name == "" {
		return ""
	}
	return conceptPrefix + name + "/n/" + name
}

// Attribute expands a bare label to an is-a relation on its concept
// (/r/IsA,/c/en/<name>/n/<name>).
func Attribute(label string) string {
	if IsCompound(label) {
		return strings.TrimSpace(label)
	}
	concept := Concept(label)
	if concept == "" {
		return ""
	}
	return isARelation + "," + concept
}

// Split separates a compound attribute into its relation and concept parts.
// Identifiers without a relation return an empty relation.
func Split(id string) (relation, concept string) {
	if i := strings.Index(id, ","); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

// Name returns the human-readable name inside a concept or attribute
// identifier, or the identifier itself when it has no recognizable namespace.
// Example: "/r/IsA,/c/en/red/n/red" → "red"
func Name(id string) string {
	_, concept := Split(id)
	if !strings.HasPrefix(concept, conceptPrefix) {
		return id
	}
	rest := strings.TrimPrefix(concept, conceptPrefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return id
	}
	return rest
}
