package feature

import (
	"github.com/andaru/featurestream/geometry"
	"github.com/andaru/featurestream/pathtrack"
	"github.com/andaru/featurestream/schema"
)

// Metadata describes the decoded document as a whole
type Metadata struct {
	// NumberReturned and NumberMatched are nil when the document does not state them
	NumberReturned *int64
	NumberMatched  *int64
	// SingleFeature is set when the document is one feature rather than a collection
	SingleFeature bool
}

// ContextOption is a Context option function
type ContextOption func(*Context)

// WithTypeSegment marks the first path segment as the feature type name,
// which schema resolution then skips.
func WithTypeSegment() ContextOption { return func(c *Context) { c.typeSegment = true } }

// Context is the decode state shared by a decoder with its handler.
//
// The decoder owns it; handlers only read it during a callback. Slices
// returned by accessors are only valid for the duration of the callback
// unless noted otherwise.
type Context struct {
	schema      *schema.Schema
	typeSegment bool

	path      pathtrack.Tracker
	indexes   []int
	value     string
	valueType schema.Type

	inGeometry   bool
	geometryType geometry.Type
	geometryDim  int

	metadata       Metadata
	additionalInfo map[string]string
}

// NewContext returns a Context resolving paths against s, which may be nil.
func NewContext(s *schema.Schema, opts ...ContextOption) *Context {
	c := &Context{schema: s, additionalInfo: map[string]string{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PathTracker returns the tracker holding the current path
func (c *Context) PathTracker() *pathtrack.Tracker { return &c.path }

// Path returns a snapshot of the current path
func (c *Context) Path() []string { return c.path.Path() }

func (c *Context) SetIndexes(idx []int) { c.indexes = idx }
func (c *Context) Indexes() []int       { return c.indexes }

func (c *Context) SetValue(v string) { c.value = v }
func (c *Context) Value() string     { return c.value }

func (c *Context) SetValueType(t schema.Type) { c.valueType = t }
func (c *Context) ValueType() schema.Type     { return c.valueType }

func (c *Context) SetInGeometry(in bool) { c.inGeometry = in }
func (c *Context) InGeometry() bool      { return c.inGeometry }

func (c *Context) SetGeometryType(t geometry.Type) { c.geometryType = t }
func (c *Context) GeometryType() geometry.Type     { return c.geometryType }

// SetGeometryDimension sets the coordinate dimension; zero unsets it.
func (c *Context) SetGeometryDimension(dim int) { c.geometryDim = dim }

// GeometryDimension returns the coordinate dimension, if known
func (c *Context) GeometryDimension() (int, bool) { return c.geometryDim, c.geometryDim > 0 }

// ClearGeometry resets the geometry state
func (c *Context) ClearGeometry() {
	c.inGeometry = false
	c.geometryType = geometry.None
	c.geometryDim = 0
}

func (c *Context) PutAdditionalInfo(k, v string) { c.additionalInfo[k] = v }

// AdditionalInfo returns the attributes of the current structural element
func (c *Context) AdditionalInfo() map[string]string { return c.additionalInfo }

func (c *Context) ClearAdditionalInfo() { clear(c.additionalInfo) }

// Metadata returns the document metadata for reading and updating
func (c *Context) Metadata() *Metadata { return &c.metadata }

// Schema resolves the current path against the schema.
func (c *Context) Schema() (*schema.Property, bool) {
	if c.schema == nil {
		return nil, false
	}
	p := c.path.Peek()
	if c.typeSegment {
		if len(p) == 0 {
			return nil, false
		}
		p = p[1:]
	}
	return c.schema.Lookup(p)
}

// SchemaDefinition returns the schema the context resolves against, or nil
func (c *Context) SchemaDefinition() *schema.Schema { return c.schema }

// ResetFeature clears the per-feature state at a feature boundary
func (c *Context) ResetFeature() {
	c.path.Clear()
	c.indexes = nil
	c.value = ""
	c.valueType = schema.TypeUnknown
	c.ClearGeometry()
	c.ClearAdditionalInfo()
}
