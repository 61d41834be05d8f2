package xmlutil

import "strings"

// XMLNamespace is the namespace bound to the reserved "xml" prefix
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Split splits a "prefix:local" qualified name. A name without a colon has
// an empty prefix.
func Split(qname string) (prefix, local string) {
	if i := strings.IndexByte(qname, ':'); i > -1 {
		return qname[:i], qname[i+1:]
	}
	return "", qname
}
