// Package wfs reads WFS GetCapabilities documents, which name the feature
// types a service offers and bind their namespaces: the external
// configuration of the GML decoder.
package wfs

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/andaru/featurestream/gml"
	"github.com/andaru/featurestream/schema"
	"github.com/andaru/featurestream/xmlutil"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// FeatureType is a feature type offered by a service
type FeatureType struct {
	// Name is the resolved feature type name, QName as written
	Name  xml.Name
	QName string
	Title string
	// DefaultCRS is the DefaultCRS (2.0), DefaultSRS (1.1) or SRS (1.0)
	DefaultCRS string
}

// Capabilities is the decoding relevant content of a capabilities document
type Capabilities struct {
	Version      string
	Title        string
	FeatureTypes []FeatureType
	// Namespaces binds the prefixes of the feature type names
	Namespaces xmlutil.PrefixMap
}

// the element names are the same across WFS 1.0, 1.1 and 2.0 while their
// namespace is not, so queries match local names only
var (
	xpRoot        = xpath.MustCompile(`/*[local-name()='WFS_Capabilities']`)
	xpTitle       = xpath.MustCompile(`*[local-name()='ServiceIdentification' or local-name()='Service']/*[local-name()='Title']`)
	xpFeatureType = xpath.MustCompile(`*[local-name()='FeatureTypeList']/*[local-name()='FeatureType']`)
	xpName        = xpath.MustCompile(`*[local-name()='Name']`)
	xpTypeTitle   = xpath.MustCompile(`*[local-name()='Title']`)
	xpCRS         = xpath.MustCompile(`*[local-name()='DefaultCRS' or local-name()='DefaultSRS' or local-name()='SRS']`)
)

// ParseCapabilities reads a WFS capabilities document from r
func ParseCapabilities(r io.Reader) (*Capabilities, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "capabilities")
	}
	root := xmlquery.QuerySelector(doc, xpRoot)
	if root == nil {
		return nil, errors.New("capabilities: missing <WFS_Capabilities> element")
	}
	c := &Capabilities{
		Version:    root.SelectAttr("version"),
		Title:      text(xmlquery.QuerySelector(root, xpTitle)),
		Namespaces: xmlutil.PrefixMap{},
	}
	for _, n := range xmlquery.QuerySelectorAll(root, xpFeatureType) {
		qname := text(xmlquery.QuerySelector(n, xpName))
		if qname == "" {
			glog.Warningf("wfs: feature type without a name skipped")
			continue
		}
		prefix, local := xmlutil.Split(qname)
		uri, ok := lookup(n, prefix)
		if !ok {
			return nil, errors.Errorf("capabilities: feature type %s uses an undeclared prefix", qname)
		}
		if prefix != "" {
			if bound, dup := c.Namespaces[prefix]; dup && bound != uri {
				glog.Warningf("wfs: prefix %q bound to %s and %s, keeping the first", prefix, bound, uri)
			} else {
				c.Namespaces[prefix] = uri
			}
		}
		c.FeatureTypes = append(c.FeatureTypes, FeatureType{
			Name:       xml.Name{Space: uri, Local: local},
			QName:      qname,
			Title:      text(xmlquery.QuerySelector(n, xpTypeTitle)),
			DefaultCRS: text(xmlquery.QuerySelector(n, xpCRS)),
		})
	}
	glog.V(1).Infof("wfs: capabilities version %q, %d feature types", c.Version, len(c.FeatureTypes))
	return c, nil
}

// lookup resolves prefix against the declarations in scope at n
func lookup(n *xmlquery.Node, prefix string) (string, bool) {
	for ; n != nil; n = n.Parent {
		for _, a := range n.Attr {
			if p, ok := xmlutil.Declares(xml.Attr{Name: a.Name, Value: a.Value}); ok && p == prefix {
				return a.Value, true
			}
		}
	}
	return "", prefix == ""
}

func text(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}

// FeatureType returns the feature type with the qualified name qname
func (c *Capabilities) FeatureType(qname string) (FeatureType, bool) {
	for _, ft := range c.FeatureTypes {
		if ft.QName == qname {
			return ft, true
		}
	}
	return FeatureType{}, false
}

// GMLConfig returns a GML decoder configuration recognizing the named
// feature types, or all of them if none are named.
func (c *Capabilities) GMLConfig(s *schema.Schema, qnames ...string) (gml.Config, error) {
	cfg := gml.Config{Namespaces: c.Namespaces, Schema: s}
	if len(qnames) == 0 {
		for _, ft := range c.FeatureTypes {
			cfg.FeatureTypes = append(cfg.FeatureTypes, ft.Name)
		}
		return cfg, nil
	}
	for _, qn := range qnames {
		ft, ok := c.FeatureType(qn)
		if !ok {
			return gml.Config{}, errors.Errorf("feature type %s not offered", qn)
		}
		cfg.FeatureTypes = append(cfg.FeatureTypes, ft.Name)
	}
	return cfg, nil
}
