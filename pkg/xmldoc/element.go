// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xmldoc

import (
	"bytes"
	"encoding/xml"
	"slices"
	"strings"
)

const defaultIndentUnit = "  "

// Element is an XML element. Name.Space holds the resolved namespace URI.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []Node

	parent      *Element
	prefix      string
	startTag    string
	endTag      string
	selfClosing bool
}

func (e *Element) write(buf *bytes.Buffer) {
	buf.WriteString(e.startTag)
	if e.selfClosing {
		return
	}
	for _, c := range e.Children {
		c.write(buf)
	}
	buf.WriteString(e.endTag)
}

// Parent returns the enclosing element, or nil for the root.
func (e *Element) Parent() *Element { return e.parent }

// QualifiedName returns the element name as written in the source.
func (e *Element) QualifiedName() string {
	if e.prefix == "" {
		return e.Name.Local
	}
	return e.prefix + ":" + e.Name.Local
}

// Attribute returns the value of the unqualified attribute with the given name.
func (e *Element) Attribute(local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Elements returns the child elements in document order.
func (e *Element) Elements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// ChildrenNamed returns the child elements matching name.
func (e *Element) ChildrenNamed(name xml.Name) []*Element {
	var out []*Element
	for _, el := range e.Elements() {
		if el.Name == name {
			out = append(out, el)
		}
	}
	return out
}

// Child returns the first child element matching name, or nil.
func (e *Element) Child(name xml.Name) *Element {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Name == name {
			return el
		}
	}
	return nil
}

// Find returns the first descendant matching name in document order, or nil.
func (e *Element) Find(name xml.Name) *Element {
	for _, c := range e.Children {
		el, ok := c.(*Element)
		if !ok {
			continue
		}
		if el.Name == name {
			return el
		}
		if found := el.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Text returns the concatenated character data directly under e.
func (e *Element) Text() string {
	var sb strings.Builder
	for _, c := range e.Children {
		if t, ok := c.(*Text); ok {
			sb.WriteString(t.value)
		}
	}
	return sb.String()
}

// SetText replaces all content of e with value.
func (e *Element) SetText(value string) {
	e.open()
	e.Children = []Node{newText(value)}
}

// AppendElement adds a child element holding value after the last child
// element of e, in e's namespace. Indentation follows the existing children,
// or the indentation of e itself when it has none.
func (e *Element) AppendElement(local, value string) *Element {
	child := &Element{
		Name:   xml.Name{Space: e.Name.Space, Local: local},
		parent: e,
		prefix: e.prefix,
	}
	qname := child.QualifiedName()
	child.startTag = "<" + qname + ">"
	child.endTag = "</" + qname + ">"
	child.Children = []Node{newText(value)}

	e.open()

	last := -1
	for i, c := range e.Children {
		if _, ok := c.(*Element); ok {
			last = i
		}
	}

	if last >= 0 {
		indent := lineIndent(precedingSpace(e.Children, last))
		nodes := []Node{child}
		if indent != "" {
			nodes = []Node{rawSpace(indent), child}
		}
		e.Children = slices.Insert(e.Children, last+1, nodes...)
		return child
	}

	closing := e.closingIndent()
	if !onlySpace(e.Children) || closing == "" {
		e.Children = append(e.Children, child)
		return child
	}
	e.Children = []Node{rawSpace(closing + indentUnit(closing)), child, rawSpace(closing)}
	return child
}

// open turns a self-closing element into one with an explicit end tag.
func (e *Element) open() {
	if !e.selfClosing {
		return
	}
	tag := strings.TrimSuffix(e.startTag, "/>")
	e.startTag = strings.TrimRight(tag, " \t\r\n") + ">"
	e.endTag = "</" + e.QualifiedName() + ">"
	e.selfClosing = false
}

// closingIndent returns the whitespace that precedes e's end tag, inferred
// from the whitespace in front of e itself.
func (e *Element) closingIndent() string {
	if e.parent == nil {
		return "\n"
	}
	for i, c := range e.parent.Children {
		if c == Node(e) {
			return lineIndent(precedingSpace(e.parent.Children, i))
		}
	}
	return ""
}

func precedingSpace(nodes []Node, i int) string {
	if i == 0 {
		return ""
	}
	t, ok := nodes[i-1].(*Text)
	if !ok || strings.TrimSpace(t.raw) != "" {
		return ""
	}
	return t.raw
}

// lineIndent keeps the last line break and the indentation after it.
func lineIndent(space string) string {
	i := strings.LastIndexByte(space, '\n')
	if i < 0 {
		return ""
	}
	if i > 0 && space[i-1] == '\r' {
		i--
	}
	return space[i:]
}

func indentUnit(indent string) string {
	if strings.Contains(indent, "\t") {
		return "\t"
	}
	return defaultIndentUnit
}

func onlySpace(nodes []Node) bool {
	for _, n := range nodes {
		t, ok := n.(*Text)
		if !ok || strings.TrimSpace(t.raw) != "" {
			return false
		}
	}
	return true
}

func newText(value string) *Text {
	var buf bytes.Buffer
	// xml.EscapeText only fails when the writer does
	_ = xml.EscapeText(&buf, []byte(value))
	return &Text{raw: buf.String(), value: value}
}

func rawSpace(s string) *Text {
	return &Text{raw: s, value: s}
}
