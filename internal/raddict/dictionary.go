// Package raddict implements the RADIUS attribute dictionary:
// bidirectional attribute/vendor/value code↔name tables (RFC 2865 §5,
// RFC 2865 §5.26 for vendor-specific). It owns the *shape* of the
// store; populating it from a dictionary file on disk is an external
// collaborator — Dictionary exposes the same Register* calls a file
// parser would drive.
package raddict

import (
	"fmt"
	"strings"

	"github.com/wichert/goradius/internal/radcodec"
)

// attrKey identifies an attribute definition by its numeric code, plus an
// optional vendor code (0 for standard, non-vendor attributes).
type attrKey struct {
	vendor uint32
	code   int
}

// VendorDef is a registered vendor's name↔code binding (RFC 2865 §5.26).
type VendorDef struct {
	Name string
	Code uint32
}

// AttrDef is a single attribute definition. For TypeTLV attributes,
// Children holds the sub-attribute definitions keyed by their
// sub-code, and each child's Parent points back here.
type AttrDef struct {
	Name    string
	Code    int
	Type    radcodec.Type
	Vendor  *VendorDef // nil for standard, non-vendor attributes
	HasTag  bool       // RFC 2868 tagged attribute
	Encrypt int        // 0 = none, 1 = User-Password style, 2 = salt-encrypt

	values *twoWay[int, string] // enumerated value table, nil if none

	Children map[int]*AttrDef // sub-attributes, for Type == TypeTLV
	Parent   *AttrDef         // back-reference, non-nil for TLV children
}

// key returns this definition's lookup key.
func (a *AttrDef) key() attrKey {
	if a.Vendor != nil {
		return attrKey{vendor: a.Vendor.Code, code: a.Code}
	}
	return attrKey{code: a.Code}
}

// Dictionary is a mutable, collision-checked, bidirectional index from
// attribute/vendor/value names to their numeric codes and back. It is
// read-only once constructed and may be shared freely across
// goroutines; concurrent Register* calls are not synchronized and must
// not overlap with reads.
type Dictionary struct {
	attrsByKey  map[attrKey]*AttrDef
	attrsByName map[string]*AttrDef

	vendorsByName map[string]*VendorDef
	vendorsByCode map[uint32]*VendorDef
}

// New returns an empty Dictionary.
func New() *Dictionary {
	return &Dictionary{
		attrsByKey:    make(map[attrKey]*AttrDef),
		attrsByName:   make(map[string]*AttrDef),
		vendorsByName: make(map[string]*VendorDef),
		vendorsByCode: make(map[uint32]*VendorDef),
	}
}

// CanonicalName replaces underscores with hyphens, so that names given
// in keyword form (NAS_IP_Address) resolve the same as their
// dictionary-file form (NAS-IP-Address).
func CanonicalName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// RegisterVendor adds a VENDOR binding. Fails loudly if name or code is
// already bound to a different vendor.
func (d *Dictionary) RegisterVendor(name string, code uint32) (*VendorDef, error) {
	name = CanonicalName(name)

	if existing, ok := d.vendorsByName[name]; ok {
		if existing.Code != code {
			return nil, fmt.Errorf("register vendor %q: %w (already code %d)", name, ErrCollision, existing.Code)
		}
		return existing, nil
	}
	if existing, ok := d.vendorsByCode[code]; ok {
		if existing.Name != name {
			return nil, fmt.Errorf("register vendor code %d: %w (already name %q)", code, ErrCollision, existing.Name)
		}
		return existing, nil
	}

	v := &VendorDef{Name: name, Code: code}
	d.vendorsByName[name] = v
	d.vendorsByCode[code] = v
	return v, nil
}

// LookupVendorByName returns the vendor registered under name.
func (d *Dictionary) LookupVendorByName(name string) (*VendorDef, bool) {
	v, ok := d.vendorsByName[CanonicalName(name)]
	return v, ok
}

// LookupVendorByCode returns the vendor registered under code.
func (d *Dictionary) LookupVendorByCode(code uint32) (*VendorDef, bool) {
	v, ok := d.vendorsByCode[code]
	return v, ok
}

// RegisterAttribute adds a top-level ATTRIBUTE definition. def.Name is
// canonicalised in place. Fails loudly on a name or (vendor, code)
// collision with a different definition.
func (d *Dictionary) RegisterAttribute(def *AttrDef) error {
	def.Name = CanonicalName(def.Name)
	k := def.key()

	if existing, ok := d.attrsByName[def.Name]; ok && existing.key() != k {
		return fmt.Errorf("register attribute %q: %w (already code %+v)", def.Name, ErrCollision, existing.key())
	}
	if existing, ok := d.attrsByKey[k]; ok && existing.Name != def.Name {
		return fmt.Errorf("register attribute code %+v: %w (already name %q)", k, ErrCollision, existing.Name)
	}

	d.attrsByName[def.Name] = def
	d.attrsByKey[k] = def
	return nil
}

// RegisterTLVChild adds a sub-attribute definition under a TypeTLV parent.
// The child's Name is registered in the same flat namespace as top-level
// attributes (dictionary files conventionally give TLV children globally
// unique names), but it is looked up by code through parent.Children, not
// through Dictionary's own code index.
func (d *Dictionary) RegisterTLVChild(parent *AttrDef, child *AttrDef) error {
	if parent.Type != radcodec.TypeTLV {
		return fmt.Errorf("register tlv child %q under %q: %w", child.Name, parent.Name, ErrNotTLV)
	}

	child.Name = CanonicalName(child.Name)
	child.Parent = parent

	if parent.Children == nil {
		parent.Children = make(map[int]*AttrDef)
	}
	if existing, ok := parent.Children[child.Code]; ok && existing.Name != child.Name {
		return fmt.Errorf("register tlv child code %d under %q: %w (already name %q)",
			child.Code, parent.Name, ErrCollision, existing.Name)
	}
	parent.Children[child.Code] = child

	if existing, ok := d.attrsByName[child.Name]; ok && existing != child {
		return fmt.Errorf("register tlv child %q: %w (name already bound)", child.Name, ErrCollision)
	}
	d.attrsByName[child.Name] = child

	return nil
}

// LookupAttributeByName returns the attribute definition registered under
// name (canonicalised), searching both top-level attributes and TLV
// children.
func (d *Dictionary) LookupAttributeByName(name string) (*AttrDef, bool) {
	def, ok := d.attrsByName[CanonicalName(name)]
	return def, ok
}

// LookupAttributeByCode returns the top-level attribute definition for a
// (vendor, code) pair. vendor is 0 for standard attributes.
func (d *Dictionary) LookupAttributeByCode(vendor uint32, code int) (*AttrDef, bool) {
	def, ok := d.attrsByKey[attrKey{vendor: vendor, code: code}]
	return def, ok
}

// RegisterValue adds a VALUE binding (attrName, valueName) -> valueInt.
// attrName must already be registered. Fails loudly on collision.
func (d *Dictionary) RegisterValue(attrName, valueName string, valueInt int) error {
	def, ok := d.LookupAttributeByName(attrName)
	if !ok {
		return fmt.Errorf("register value for %q: %w", attrName, ErrUnknownAttribute)
	}

	valueName = CanonicalName(valueName)
	if def.values == nil {
		def.values = newTwoWay[int, string]()
	}
	if err := def.values.add(valueInt, valueName); err != nil {
		return fmt.Errorf("register value %s=%s: %w", attrName, valueName, err)
	}
	return nil
}

// LookupValueName returns the symbolic name for attrName's enumerated
// value valueInt.
func (d *Dictionary) LookupValueName(attrName string, valueInt int) (string, bool) {
	def, ok := d.LookupAttributeByName(attrName)
	if !ok || def.values == nil {
		return "", false
	}
	return def.values.byKey(valueInt)
}

// LookupValueInt returns the numeric value bound to attrName's enumerated
// value name.
func (d *Dictionary) LookupValueInt(attrName, valueName string) (int, bool) {
	def, ok := d.LookupAttributeByName(attrName)
	if !ok || def.values == nil {
		return 0, false
	}
	return def.values.byValue(CanonicalName(valueName))
}
