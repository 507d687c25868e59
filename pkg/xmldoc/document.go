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
	"errors"
	"fmt"
	"io"
)

// Error types for document parsing failures
var (
	ErrNoRoot        = errors.New("document has no root element")
	ErrMultipleRoots = errors.New("document has more than one root element")
	ErrUnclosed      = errors.New("document ends inside an element")
	ErrEncoding      = errors.New("unsupported document encoding")
)

// Node is a piece of a document. Every byte of the parsed input belongs to
// exactly one node.
type Node interface {
	write(buf *bytes.Buffer)
}

// Text is character data, including CDATA sections.
type Text struct {
	raw   string
	value string
}

// Value returns the decoded character data.
func (t *Text) Value() string { return t.value }

func (t *Text) write(buf *bytes.Buffer) { buf.WriteString(t.raw) }

// Markup is a comment, processing instruction or directive, kept verbatim.
type Markup struct {
	raw string
}

func (m *Markup) write(buf *bytes.Buffer) { buf.WriteString(m.raw) }

// Document is a lossless XML tree. Serializing a document that was not
// modified returns the parsed input unchanged.
type Document struct {
	Prolog []Node
	Root   *Element
	Epilog []Node

	source *sourceEncoding
}

// Parse reads an XML document. The input must be well formed and contain
// exactly one root element. UTF-16 and legacy single-byte inputs are
// converted to UTF-8 for parsing and written back in their own encoding.
func Parse(input []byte) (*Document, error) {
	data, source, err := decodeInput(input)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = passThrough

	doc := &Document{source: source}
	var stack []*Element
	var prev int64

	add := func(n Node) {
		switch {
		case len(stack) > 0:
			stack[len(stack)-1].Children = append(stack[len(stack)-1].Children, n)
		case doc.Root == nil:
			doc.Prolog = append(doc.Prolog, n)
		default:
			doc.Epilog = append(doc.Epilog, n)
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}

		off := dec.InputOffset()
		raw := string(data[prev:off])
		prev = off

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Name:     t.Name,
				Attr:     append([]xml.Attr(nil), t.Attr...),
				prefix:   rawPrefix(raw),
				startTag: raw,
			}
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, ErrMultipleRoots
				}
				doc.Root = el
			} else {
				el.parent = stack[len(stack)-1]
				el.parent.Children = append(el.parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			// the decoder synthesizes the end of <a/> without consuming input
			if raw == "" {
				el.selfClosing = true
			} else {
				el.endTag = raw
			}
		case xml.CharData:
			add(&Text{raw: raw, value: string(t)})
		default:
			add(&Markup{raw: raw})
		}
	}

	if len(stack) > 0 {
		return nil, ErrUnclosed
	}
	if doc.Root == nil {
		return nil, ErrNoRoot
	}
	if int(prev) < len(data) {
		doc.Epilog = append(doc.Epilog, &Markup{raw: string(data[prev:])})
	}
	return doc, nil
}

// Bytes serializes the document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	for _, n := range d.Prolog {
		n.write(&buf)
	}
	if d.Root != nil {
		d.Root.write(&buf)
	}
	for _, n := range d.Epilog {
		n.write(&buf)
	}
	return d.source.encode(buf.Bytes())
}

// WriteTo implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Bytes())
	return int64(n), err
}

// rawPrefix extracts the namespace prefix used in a raw start tag.
func rawPrefix(startTag string) string {
	if len(startTag) < 2 || startTag[0] != '<' {
		return ""
	}
	for i := 1; i < len(startTag); i++ {
		switch startTag[i] {
		case ':':
			return startTag[1:i]
		case ' ', '\t', '\r', '\n', '/', '>':
			return ""
		}
	}
	return ""
}
