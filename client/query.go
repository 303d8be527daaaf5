package client

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/irrkit/go-irrd/wire"
)

// ObjectClass enumerates the RPSL object class tokens accepted by the
// `!m` query.
type ObjectClass string

// Object class tokens recognised by IRRd.
const (
	ClassMntner     ObjectClass = "mntner"
	ClassPerson     ObjectClass = "person"
	ClassRole       ObjectClass = "role"
	ClassRoute      ObjectClass = "route"
	ClassRoute6     ObjectClass = "route6"
	ClassAutNum     ObjectClass = "aut-num"
	ClassInetRtr    ObjectClass = "inet-rtr"
	ClassAsSet      ObjectClass = "as-set"
	ClassRouteSet   ObjectClass = "route-set"
	ClassFilterSet  ObjectClass = "filter-set"
	ClassRtrSet     ObjectClass = "rtr-set"
	ClassPeeringSet ObjectClass = "peering-set"
)

type queryOp uint8

const (
	opVersion queryOp = iota
	opSetClientID
	opSetTimeout
	opGetSources
	opSetSources
	opUnsetSources
	opAsSetMembers
	opAsSetMembersRecursive
	opRouteSetMembers
	opRouteSetMembersRecursive
	opIpv4Routes
	opIpv6Routes
	opRpslObject
	opMntBy
	opOrigins
	opRoutesExact
	opRoutesLess
	opRoutesLessEqual
	opRoutesMore
)

// Query is one command from the closed IRRd query catalogue. Queries are
// pure values: comparable, copyable, and constructed with the package's
// query constructors. The zero value is the Version query.
type Query struct {
	op    queryOp
	arg   string
	class ObjectClass
}

// Version requests the server version banner (`!v`).
func Version() Query {
	return Query{op: opVersion}
}

// SetClientID identifies the client to the server (`!n`).
func SetClientID(id string) Query {
	return Query{op: opSetClientID, arg: id}
}

// SetTimeout sets the server-side idle timeout (`!t`).
func SetTimeout(timeout time.Duration) Query {
	return Query{op: opSetTimeout, arg: strconv.FormatInt(int64(timeout/time.Second), 10)}
}

// GetSources lists the sources currently selected for queries (`!s-lc`).
func GetSources() Query {
	return Query{op: opGetSources}
}

// SetSources restricts queries to the given sources (`!s`).
func SetSources(sources ...string) Query {
	return Query{op: opSetSources, arg: strings.Join(sources, ",")}
}

// UnsetSources re-enables all sources (`!s-*`).
func UnsetSources() Query {
	return Query{op: opUnsetSources}
}

// AsSetMembers expands one level of an as-set (`!i`).
func AsSetMembers(name string) Query {
	return Query{op: opAsSetMembers, arg: name}
}

// AsSetMembersRecursive expands an as-set recursively (`!i...,1`).
func AsSetMembersRecursive(name string) Query {
	return Query{op: opAsSetMembersRecursive, arg: name}
}

// RouteSetMembers expands one level of a route-set (`!i`).
func RouteSetMembers(name string) Query {
	return Query{op: opRouteSetMembers, arg: name}
}

// RouteSetMembersRecursive expands a route-set recursively (`!i...,1`).
func RouteSetMembersRecursive(name string) Query {
	return Query{op: opRouteSetMembersRecursive, arg: name}
}

// Ipv4Routes lists IPv4 prefixes originated by an autonomous system
// (`!g`).
func Ipv4Routes(autnum string) Query {
	return Query{op: opIpv4Routes, arg: autnum}
}

// Ipv6Routes lists IPv6 prefixes originated by an autonomous system
// (`!6`).
func Ipv6Routes(autnum string) Query {
	return Query{op: opIpv6Routes, arg: autnum}
}

// RpslObject retrieves a single RPSL object by class and primary key
// (`!m`).
func RpslObject(class ObjectClass, key string) Query {
	return Query{op: opRpslObject, arg: key, class: class}
}

// MntBy retrieves all objects maintained by a mntner (`!o`).
func MntBy(name string) Query {
	return Query{op: opMntBy, arg: name}
}

// Origins lists the origin autonomous systems of the exact-match route
// objects for a prefix (`!r...,o`).
func Origins(prefix string) Query {
	return Query{op: opOrigins, arg: prefix}
}

// RoutesExact retrieves route objects exactly matching a prefix (`!r`).
func RoutesExact(prefix string) Query {
	return Query{op: opRoutesExact, arg: prefix}
}

// RoutesLess retrieves route objects covering a prefix, excluding the
// exact match (`!r...,l`).
func RoutesLess(prefix string) Query {
	return Query{op: opRoutesLess, arg: prefix}
}

// RoutesLessEqual retrieves route objects covering a prefix, including
// the exact match (`!r...,L`).
func RoutesLessEqual(prefix string) Query {
	return Query{op: opRoutesLessEqual, arg: prefix}
}

// RoutesMore retrieves route objects more specific than a prefix
// (`!r...,M`).
func RoutesMore(prefix string) Query {
	return Query{op: opRoutesMore, arg: prefix}
}

// Cmd renders the query to its wire command string. Every command begins
// with `!` and is newline-terminated.
func (q Query) Cmd() string {
	switch q.op {
	case opVersion:
		return "!v\n"
	case opSetClientID:
		return fmt.Sprintf("!n%s\n", q.arg)
	case opSetTimeout:
		return fmt.Sprintf("!t%s\n", q.arg)
	case opGetSources:
		return "!s-lc\n"
	case opSetSources:
		return fmt.Sprintf("!s%s\n", q.arg)
	case opUnsetSources:
		return "!s-*\n"
	case opAsSetMembers, opRouteSetMembers:
		return fmt.Sprintf("!i%s\n", q.arg)
	case opAsSetMembersRecursive, opRouteSetMembersRecursive:
		return fmt.Sprintf("!i%s,1\n", q.arg)
	case opIpv4Routes:
		return fmt.Sprintf("!g%s\n", q.arg)
	case opIpv6Routes:
		return fmt.Sprintf("!6%s\n", q.arg)
	case opRpslObject:
		return fmt.Sprintf("!m%s,%s\n", q.class, q.arg)
	case opMntBy:
		return fmt.Sprintf("!o%s\n", q.arg)
	case opOrigins:
		return fmt.Sprintf("!r%s,o\n", q.arg)
	case opRoutesExact:
		return fmt.Sprintf("!r%s\n", q.arg)
	case opRoutesLess:
		return fmt.Sprintf("!r%s,l\n", q.arg)
	case opRoutesLessEqual:
		return fmt.Sprintf("!r%s,L\n", q.arg)
	case opRoutesMore:
		return fmt.Sprintf("!r%s,M\n", q.arg)
	default:
		panic(fmt.Sprintf("unhandled query op %d", q.op))
	}
}

// String renders the query for logs and error messages: the wire command
// without its trailing newline.
func (q Query) String() string {
	return strings.TrimSuffix(q.Cmd(), "\n")
}

// ExpectsData reports whether the server returns a data payload for this
// query.
func (q Query) ExpectsData() bool {
	switch q.op {
	case opSetClientID, opSetTimeout, opSetSources, opUnsetSources:
		return false
	default:
		return true
	}
}

// verb returns the two-character command verb, used as a bounded metrics
// label.
func (q Query) verb() string {
	return q.Cmd()[:2]
}

// parseItem applies the variant-selected framing parser to the buffer
// prefix, returning the raw bytes of one response item.
func (q Query) parseItem(input []byte) (consumed int, item []byte, err error) {
	switch {
	case !q.ExpectsData():
		return wire.Noop(input)
	case q.op == opVersion:
		return wire.All(input)
	case q.op == opRpslObject || q.op == opMntBy ||
		q.op == opRoutesExact || q.op == opRoutesLess ||
		q.op == opRoutesLessEqual || q.op == opRoutesMore:
		return wire.Paragraph(input)
	default:
		return wire.Word(input)
	}
}
