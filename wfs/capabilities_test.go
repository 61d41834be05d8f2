package wfs

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/gml"
	"github.com/andaru/featurestream/stream"
	"github.com/andaru/featurestream/xmlutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caps20 = `<?xml version="1.0" encoding="UTF-8"?>
<wfs:WFS_Capabilities version="2.0.0" xmlns:wfs="http://www.opengis.net/wfs/2.0"
    xmlns:ows="http://www.opengis.net/ows/1.1" xmlns:b="urn:example:buildings">
  <ows:ServiceIdentification>
    <ows:Title> City data </ows:Title>
  </ows:ServiceIdentification>
  <wfs:FeatureTypeList>
    <wfs:FeatureType>
      <wfs:Name>b:Building</wfs:Name>
      <wfs:Title>Buildings</wfs:Title>
      <wfs:DefaultCRS>urn:ogc:def:crs:EPSG::4326</wfs:DefaultCRS>
    </wfs:FeatureType>
    <wfs:FeatureType xmlns:r="urn:example:roads">
      <wfs:Name>r:Road</wfs:Name>
    </wfs:FeatureType>
    <wfs:FeatureType>
      <wfs:Name></wfs:Name>
    </wfs:FeatureType>
  </wfs:FeatureTypeList>
</wfs:WFS_Capabilities>`

const caps11 = `<WFS_Capabilities version="1.1.0" xmlns="http://www.opengis.net/wfs" xmlns:topp="http://www.openplans.org/topp">
  <FeatureTypeList>
    <FeatureType>
      <Name>topp:states</Name>
      <DefaultSRS>EPSG:4326</DefaultSRS>
    </FeatureType>
  </FeatureTypeList>
</WFS_Capabilities>`

func TestParseCapabilities(t *testing.T) {
	ck := assert.New(t)
	c, err := ParseCapabilities(strings.NewReader(caps20))
	require.NoError(t, err)
	ck.Equal("2.0.0", c.Version)
	ck.Equal("City data", c.Title)
	ck.Equal([]FeatureType{
		{
			Name:       xml.Name{Space: "urn:example:buildings", Local: "Building"},
			QName:      "b:Building",
			Title:      "Buildings",
			DefaultCRS: "urn:ogc:def:crs:EPSG::4326",
		},
		{
			Name:  xml.Name{Space: "urn:example:roads", Local: "Road"},
			QName: "r:Road",
		},
	}, c.FeatureTypes)
	ck.Equal(xmlutil.PrefixMap{"b": "urn:example:buildings", "r": "urn:example:roads"}, c.Namespaces)

	c, err = ParseCapabilities(strings.NewReader(caps11))
	require.NoError(t, err)
	ck.Equal("1.1.0", c.Version)
	ck.Len(c.FeatureTypes, 1)
	ck.Equal("http://www.openplans.org/topp", c.FeatureTypes[0].Name.Space)
	ck.Equal("EPSG:4326", c.FeatureTypes[0].DefaultCRS)
}

func TestParseCapabilitiesErrors(t *testing.T) {
	for _, doc := range []string{
		`<wfs:WFS_Capabilities`,
		`<ServiceExceptionReport/>`,
		`<WFS_Capabilities><FeatureTypeList><FeatureType><Name>x:A</Name></FeatureType></FeatureTypeList></WFS_Capabilities>`,
	} {
		t.Run("", func(t *testing.T) {
			_, err := ParseCapabilities(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestGMLConfig(t *testing.T) {
	ck := assert.New(t)
	c, err := ParseCapabilities(strings.NewReader(caps20))
	require.NoError(t, err)

	cfg, err := c.GMLConfig(nil)
	require.NoError(t, err)
	ck.Len(cfg.FeatureTypes, 2)

	cfg, err = c.GMLConfig(nil, "r:Road")
	require.NoError(t, err)
	ck.Equal([]xml.Name{{Space: "urn:example:roads", Local: "Road"}}, cfg.FeatureTypes)

	_, err = c.GMLConfig(nil, "b:Bridge")
	ck.Error(err)

	rec := &feature.Recorder{}
	doc := `<c xmlns:x="urn:example:roads" xmlns:b="urn:example:buildings">` +
		`<b:Building><b:name>skipped</b:name></b:Building>` +
		`<x:Road><x:name>A1</x:name></x:Road></c>`
	require.NoError(t, stream.FeedAll(gml.NewDecoder(rec, cfg), []byte(doc), 5))
	ck.Equal([]string{
		`start`,
		`feature-start r:Road`,
		`value r:Road.r:name [1] STRING "A1"`,
		`feature-end r:Road`,
		`end`,
	}, rec.Strings())
}
