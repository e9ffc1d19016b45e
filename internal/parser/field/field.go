// Package field provides tolerant lookup primitives over parsed XML
// trees. Absence of a node or a tag is a normal result, never an error:
// every function accepts a nil element and returns a zero value when
// nothing matches.
package field

import (
	"strings"

	"github.com/beevik/etree"
)

// Value returns the text content of the first descendant of e whose
// local tag name matches tag, or "" when e is nil or no match exists.
func Value(e *etree.Element, tag string) string {
	match := Element(e, tag)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match.Text())
}

// Element returns the first descendant of e (depth-first, document
// order, including e itself) whose local tag name matches tag.
func Element(e *etree.Element, tag string) *etree.Element {
	if e == nil {
		return nil
	}
	if localName(e) == tag {
		return e
	}
	for _, child := range e.ChildElements() {
		if found := Element(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// Elements returns every descendant of e with the given local tag name,
// in document order. A nil e yields nil.
func Elements(e *etree.Element, tag string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	collect(e, tag, &out)
	return out
}

func collect(e *etree.Element, tag string, out *[]*etree.Element) {
	if localName(e) == tag {
		*out = append(*out, e)
		return
	}
	for _, child := range e.ChildElements() {
		collect(child, tag, out)
	}
}

// Attr returns the value of the named attribute, or "" when e is nil or
// the attribute is absent.
func Attr(e *etree.Element, name string) string {
	if e == nil {
		return ""
	}
	return e.SelectAttrValue(name, "")
}

// FirstChild returns the first child element of e, or nil.
func FirstChild(e *etree.Element) *etree.Element {
	if e == nil {
		return nil
	}
	children := e.ChildElements()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// localName strips any namespace prefix from the element tag.
func localName(e *etree.Element) string {
	tag := e.Tag
	if idx := strings.IndexByte(tag, ':'); idx >= 0 {
		return tag[idx+1:]
	}
	return tag
}
