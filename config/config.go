// Package config loads decoder configuration from YAML and builds the
// matching decoder.
package config

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"

	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/gml"
	"github.com/andaru/featurestream/jsonfeat"
	"github.com/andaru/featurestream/schema"
	"github.com/andaru/featurestream/stream"
	"github.com/andaru/featurestream/xmlutil"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Format is an input document format
type Format string

const (
	FormatGML     Format = "gml"
	FormatGeoJSON Format = "geojson"
	FormatJSON    Format = "json"
)

// ErrInvalid is the cause of configuration validation errors
var ErrInvalid = errors.New("invalid configuration")

// Config is a decoder configuration
type Config struct {
	Format Format `yaml:"format"`
	// Namespaces maps prefixes to namespace URIs (gml)
	Namespaces map[string]string `yaml:"namespaces"`
	// FeatureTypes are "prefix:local" or "local" element names (gml)
	FeatureTypes []string `yaml:"feature_types"`
	Fields       []string `yaml:"fields"`
	SkipGeometry bool     `yaml:"skip_geometry"`
	PassThrough  bool     `yaml:"pass_through"`
	// NullValue is reported for JSON nulls when set (geojson, json)
	NullValue *string `yaml:"null_value"`
	// Wrapper is the member path to the features (json)
	Wrapper  []string `yaml:"wrapper"`
	Validate bool     `yaml:"validate"`

	// Schema is an inline schema tree; SchemaFile references a schema
	// document, relative to the configuration file.
	Schema     *schema.Property `yaml:"schema"`
	SchemaFile string           `yaml:"schema_file"`

	dir    string
	schema *schema.Schema
}

// Load reads the configuration file at path
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	defer f.Close()
	return parse(f, filepath.Dir(path))
}

// Parse reads a configuration document. Schema files resolve against the
// working directory.
func Parse(r io.Reader) (*Config, error) { return parse(r, "") }

func parse(r io.Reader, dir string) (*Config, error) {
	c := &Config{dir: dir}
	if err := yaml.NewDecoder(r).Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "config")
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// Check checks the configuration and defaults the format to gml
func (c *Config) Check() error {
	switch c.Format {
	case "":
		c.Format = FormatGML
	case FormatGML, FormatGeoJSON, FormatJSON:
	default:
		return errors.Wrapf(ErrInvalid, "unknown format %q", c.Format)
	}
	if c.Schema != nil && c.SchemaFile != "" {
		return errors.Wrap(ErrInvalid, "both schema and schema_file set")
	}
	if c.PassThrough && c.Format != FormatGML {
		return errors.Wrapf(ErrInvalid, "pass_through is not supported for %s", c.Format)
	}
	if len(c.Wrapper) > 0 && c.Format != FormatJSON {
		return errors.Wrapf(ErrInvalid, "wrapper is not supported for %s", c.Format)
	}
	pm := xmlutil.PrefixMap(c.Namespaces)
	for _, ft := range c.FeatureTypes {
		if _, ok := pm.Resolve(ft); !ok {
			return errors.Wrapf(ErrInvalid, "feature type %q uses an undeclared prefix", ft)
		}
	}
	return nil
}

// LoadSchema returns the configured schema, nil if none is configured
func (c *Config) LoadSchema() (*schema.Schema, error) {
	if c.schema != nil {
		return c.schema, nil
	}
	var err error
	switch {
	case c.Schema != nil:
		c.schema, err = schema.New(c.Schema)
	case c.SchemaFile != "":
		c.schema, err = c.readSchema()
	}
	return c.schema, err
}

func (c *Config) readSchema() (*schema.Schema, error) {
	path := c.SchemaFile
	if !filepath.IsAbs(path) && c.dir != "" {
		path = filepath.Join(c.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "schema_file")
	}
	defer f.Close()
	return schema.Parse(f)
}

// GML returns the GML decoder configuration
func (c *Config) GML() (gml.Config, error) {
	s, err := c.LoadSchema()
	if err != nil {
		return gml.Config{}, err
	}
	pm := xmlutil.PrefixMap(c.Namespaces)
	var types []xml.Name
	for _, ft := range c.FeatureTypes {
		n, _ := pm.Resolve(ft)
		types = append(types, n)
	}
	return gml.Config{
		Namespaces:   pm,
		FeatureTypes: types,
		Schema:       s,
		Fields:       c.Fields,
		SkipGeometry: c.SkipGeometry,
		PassThrough:  c.PassThrough,
	}, nil
}

// JSON returns the GeoJSON and generic JSON decoder configuration
func (c *Config) JSON() (jsonfeat.Config, error) {
	s, err := c.LoadSchema()
	if err != nil {
		return jsonfeat.Config{}, err
	}
	return jsonfeat.Config{
		Schema:       s,
		Fields:       c.Fields,
		SkipGeometry: c.SkipGeometry,
		NullValue:    c.NullValue,
		Wrapper:      c.Wrapper,
	}, nil
}

// NewFeeder returns a decoder for the configured format reporting to h
func (c *Config) NewFeeder(h feature.Handler) (stream.Feeder, error) {
	if c.Format == FormatGML {
		cfg, err := c.GML()
		if err != nil {
			return nil, err
		}
		var opts []gml.Option
		if c.Validate {
			opts = append(opts, gml.WithValidation())
		}
		return gml.NewDecoder(h, cfg, opts...), nil
	}
	cfg, err := c.JSON()
	if err != nil {
		return nil, err
	}
	var opts []jsonfeat.Option
	if c.Validate {
		opts = append(opts, jsonfeat.WithValidation())
	}
	if c.Format == FormatGeoJSON {
		return jsonfeat.NewGeoJSONDecoder(h, cfg, opts...), nil
	}
	return jsonfeat.NewGenericDecoder(h, cfg, opts...), nil
}
