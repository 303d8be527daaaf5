// Package rpsl provides typed representations of the RPSL names returned
// by IRRd data queries: aut-num, as-set and route-set names and mntner
// handles.
//
// Each type has a Parse function with the signature expected by the
// client package's response readers, so query results can be parsed
// directly into domain types instead of raw strings.
//
// See RFC 2622 for the underlying grammar.
package rpsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// AutNum is an autonomous system number, rendered in the RPSL `ASn` form.
type AutNum uint32

// ParseAutNum parses an `ASn` string. The `AS` prefix is matched case
// insensitively.
func ParseAutNum(s string) (AutNum, error) {
	if len(s) < 3 || !strings.EqualFold(s[:2], "AS") {
		return 0, fmt.Errorf("rpsl: %q is not an aut-num", s)
	}
	asn, err := strconv.ParseUint(s[2:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("rpsl: bad aut-num %q: %w", s, err)
	}
	return AutNum(asn), nil
}

// ASN returns the number as a uint32.
func (a AutNum) ASN() uint32 {
	return uint32(a)
}

func (a AutNum) String() string {
	return "AS" + strconv.FormatUint(uint64(a), 10)
}

func isNameByte(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_'
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

// setName is one colon-separated component of a hierarchical set name:
// either an aut-num or a prefixed set name such as `AS-EXAMPLE`.
type setName struct {
	autnum AutNum
	name   string
}

func (c setName) String() string {
	if c.name != "" {
		return c.name
	}
	return c.autnum.String()
}

func parseSetName(s, prefix string) ([]setName, error) {
	components := strings.Split(s, ":")
	parsed := make([]setName, 0, len(components))
	named := false
	for _, comp := range components {
		if autnum, err := ParseAutNum(comp); err == nil {
			parsed = append(parsed, setName{autnum: autnum})
			continue
		}
		if len(comp) <= len(prefix) ||
			!strings.EqualFold(comp[:len(prefix)], prefix) ||
			!isName(comp) {
			return nil, fmt.Errorf("rpsl: bad set name component %q", comp)
		}
		parsed = append(parsed, setName{name: comp})
		named = true
	}
	if !named {
		return nil, errors.New("rpsl: set name requires at least one named component")
	}
	return parsed, nil
}

func formatSetName(components []setName) string {
	names := make([]string, len(components))
	for i, comp := range components {
		names[i] = comp.String()
	}
	return strings.Join(names, ":")
}

// AsSet is a hierarchical RPSL `as-set` name. At least one component must
// be a named `AS-` component.
type AsSet struct {
	components []setName
}

// ParseAsSet parses a (possibly hierarchical) as-set name.
func ParseAsSet(s string) (AsSet, error) {
	components, err := parseSetName(s, "AS-")
	if err != nil {
		return AsSet{}, err
	}
	return AsSet{components: components}, nil
}

func (s AsSet) String() string {
	return formatSetName(s.components)
}

// RouteSet is a hierarchical RPSL `route-set` name. At least one
// component must be a named `RS-` component.
type RouteSet struct {
	components []setName
}

// ParseRouteSet parses a (possibly hierarchical) route-set name.
func ParseRouteSet(s string) (RouteSet, error) {
	components, err := parseSetName(s, "RS-")
	if err != nil {
		return RouteSet{}, err
	}
	return RouteSet{components: components}, nil
}

func (s RouteSet) String() string {
	return formatSetName(s.components)
}

// Mntner is an RPSL `mntner` handle.
type Mntner string

// ParseMntner parses a mntner handle.
func ParseMntner(s string) (Mntner, error) {
	if !isName(s) {
		return "", fmt.Errorf("rpsl: bad mntner name %q", s)
	}
	return Mntner(s), nil
}

func (m Mntner) String() string {
	return string(m)
}
