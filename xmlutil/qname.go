package xmlutil

import (
	"strconv"
	"strings"
)

// GMLNamespacePrefix is the prefix of every namespace of the GML family,
// e.g. http://www.opengis.net/gml and http://www.opengis.net/gml/3.2
const GMLNamespacePrefix = "http://www.opengis.net/gml"

// Normalizer renders namespaced names as "prefix:local" using stable
// prefixes, independent of the prefixes a document happens to declare.
//
// Prefixes come from, in order: the configured map, "gml" for the GML
// namespace family, the prefix the document used, and finally a generated
// "nsN" prefix.
type Normalizer struct {
	byURI map[string]string
	taken map[string]bool
	next  int
}

// NewNormalizer returns a Normalizer preferring the prefixes of configured.
func NewNormalizer(configured PrefixMap) *Normalizer {
	n := &Normalizer{byURI: map[string]string{}, taken: map[string]bool{}}
	for _, a := range configured.Attr() {
		prefix, _ := Declares(a)
		if prefix == "" {
			continue
		}
		if _, ok := n.byURI[a.Value]; !ok {
			n.byURI[a.Value] = prefix
		}
		n.taken[prefix] = true
	}
	return n
}

// QualifiedName returns the normalized name of local in namespace uri.
// docPrefix is the prefix used in the document, if any.
func (n *Normalizer) QualifiedName(uri, docPrefix, local string) string {
	if uri == "" {
		return local
	}
	return n.PrefixFor(uri, docPrefix) + ":" + local
}

// PrefixFor returns the normalized prefix for uri
func (n *Normalizer) PrefixFor(uri, docPrefix string) string {
	if p, ok := n.byURI[uri]; ok {
		return p
	}
	var p string
	switch {
	case strings.HasPrefix(uri, GMLNamespacePrefix) && !n.taken["gml"]:
		p = "gml"
	case docPrefix != "" && !n.taken[docPrefix]:
		p = docPrefix
	default:
		for p == "" || n.taken[p] {
			p = "ns" + strconv.Itoa(n.next)
			n.next++
		}
	}
	n.byURI[uri] = p
	n.taken[p] = true
	return p
}

// Namespaces returns the prefix map of every prefix handed out so far
func (n *Normalizer) Namespaces() PrefixMap {
	m := make(PrefixMap, len(n.byURI))
	for uri, p := range n.byURI {
		m[p] = uri
	}
	return m
}
