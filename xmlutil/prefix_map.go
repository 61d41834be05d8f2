package xmlutil

import (
	"encoding/xml"
	"sort"
)

// PrefixMap is a prefix to namespace URI map. The empty prefix holds the
// default namespace.
type PrefixMap map[string]string

// NewPrefixMap returns a PrefixMap of the namespace declarations among the
// passed XML attributes, or nil if there are none.
func NewPrefixMap(attrs ...xml.Attr) PrefixMap {
	var pmap PrefixMap
	for _, attr := range attrs {
		prefix, ok := Declares(attr)
		if !ok {
			continue
		}
		if pmap == nil {
			pmap = PrefixMap{}
		}
		pmap[prefix] = attr.Value
	}
	return pmap
}

// Declares reports whether attr is a namespace declaration, and the prefix
// it declares ("" for the default namespace).
func Declares(attr xml.Attr) (prefix string, ok bool) {
	switch {
	case attr.Name.Space == "xmlns":
		return attr.Name.Local, true
	case attr.Name.Space == "" && attr.Name.Local == "xmlns":
		return "", true
	}
	return "", false
}

// Attr returns the prefix map contents as a series of xmlns:<prefix>=<nsuri> attributes,
// sorted lexically by prefix.
func (m PrefixMap) Attr() (a []xml.Attr) {
	for k, v := range m {
		name := xml.Name{Space: "xmlns", Local: k}
		if k == "" {
			name = xml.Name{Local: "xmlns"}
		}
		a = append(a, xml.Attr{Name: name, Value: v})
	}
	if len(a) > 0 {
		// sort lexically by prefix
		sort.Slice(a, func(i int, j int) bool { return a[i].Name.Local < a[j].Name.Local })
	}
	return a
}

// Resolve returns the xml.Name of a "prefix:local" qualified name. Names
// without a prefix resolve in the default namespace.
func (m PrefixMap) Resolve(qname string) (xml.Name, bool) {
	prefix, local := Split(qname)
	uri, ok := m[prefix]
	if !ok && prefix != "" {
		return xml.Name{Local: local}, false
	}
	return xml.Name{Space: uri, Local: local}, true
}
