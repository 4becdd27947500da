package sierraecg

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// node is a generic, schema-agnostic XML element: attributes, direct
// character data, and child elements, recursively. Sierra ECG files locate
// the elements they care about by tag name regardless of nesting depth (the
// reference implementation does the same via DOM's getElementsByTagName), so
// a generic tree searched by tag is a better fit here than a fixed struct
// shape decoded with encoding/xml's usual field-tag unmarshaling.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

// parseDocument decodes r into a node tree rooted at the document's single
// top-level element.
//
// encoding/xml's Decoder, used here, never resolves external entities or
// DTD subsets: Go's XML decoder has no facility for fetching external
// resources during parsing, so a malicious DOCTYPE cannot trigger entity
// expansion or out-of-band requests the way it can in parsers that support
// XInclude or external DTDs. That default behavior already satisfies the
// "defuse external entities" requirement without adding a hardening layer.
func parseDocument(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	var root node
	if err := dec.Decode(&root); err != nil {
		return nil, errDecode("malformed XML: " + err.Error())
	}
	return &root, nil
}

// findNode returns the first descendant of n (not n itself) named tag, in
// document order — a pre-order depth-first search, mirroring
// Element.getElementsByTagName(tag)[0] from the reference implementation.
func findNode(n *node, tag string) *node {
	for i := range n.Nodes {
		child := &n.Nodes[i]
		if child.XMLName.Local == tag {
			return child
		}
		if found := findNode(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// getNode is findNode, failing with MissingElement when tag is absent.
func getNode(n *node, tag string) (*node, error) {
	found := findNode(n, tag)
	if found == nil {
		return nil, errMissingElement(tag)
	}
	return found, nil
}

// getAttr returns the value of attr on n, or def if n carries no such
// attribute. A nil def pointer means the attribute is required.
func getAttr(n *node, attr string, def *string) (string, error) {
	for _, a := range n.Attrs {
		if a.Name.Local == attr {
			return a.Value, nil
		}
	}
	if def != nil {
		return *def, nil
	}
	return "", errMissingAttribute(attr)
}

func getAttrDefault(n *node, attr, def string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == attr {
			return a.Value
		}
	}
	return def
}

// getText returns n's direct character data.
func getText(n *node) string {
	return n.Content
}

// getIntText parses n's character data as a base-10 integer.
func getIntText(n *node) (int, error) {
	s := strings.TrimSpace(getText(n))
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errDecode("expected integer in <" + n.XMLName.Local + ">: " + s)
	}
	return v, nil
}

// getIntAttr parses attr on n as a base-10 integer.
func getIntAttr(n *node, attr string) (int, error) {
	s, err := getAttr(n, attr, nil)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errDecode("expected integer in @" + attr + ": " + s)
	}
	return v, nil
}

// stripWhitespace removes all Unicode whitespace from s, since base64 text
// embedded in pretty-printed XML is usually wrapped across lines.
func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
