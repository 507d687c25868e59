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
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// declaredEncoding matches the encoding pseudo-attribute of an XML declaration.
var declaredEncoding = regexp.MustCompile(`^<\?xml[^?]*?\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// sourceEncoding is the byte encoding of the parsed input. The tree is always
// held as UTF-8 and converted back on serialization.
type sourceEncoding struct {
	enc encoding.Encoding
	bom []byte
}

// decodeInput converts data to UTF-8. A nil encoding means data already is
// UTF-8 and is used as is. Byte order marks and NUL patterns decide UTF-16;
// otherwise a declared legacy encoding applies only when the bytes are not
// valid UTF-8, so a declaration that disagrees with the content is ignored.
func decodeInput(data []byte) ([]byte, *sourceEncoding, error) {
	src := &sourceEncoding{}
	body := data

	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		src.enc, src.bom, body = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), data[:2], data[2:]
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		src.enc, src.bom, body = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), data[:2], data[2:]
	case len(data) >= 2 && data[0] == '<' && data[1] == 0:
		src.enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case len(data) >= 2 && data[0] == 0 && data[1] == '<':
		src.enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		label := declaredLabel(data)
		if label == "" || strings.HasPrefix(label, "utf-16") || utf8.Valid(data) {
			return data, nil, nil
		}
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q", ErrEncoding, label)
		}
		src.enc = enc
	}

	text, err := src.enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	// anything that would not convert back byte for byte is refused
	back, err := src.enc.NewEncoder().Bytes(text)
	if err != nil || !bytes.Equal(back, body) {
		return nil, nil, fmt.Errorf("%w: content does not round-trip", ErrEncoding)
	}
	return text, src, nil
}

// encode converts serialized UTF-8 back to the source encoding. Characters
// the source encoding cannot represent are replaced.
func (s *sourceEncoding) encode(text []byte) []byte {
	if s == nil {
		return text
	}
	out, err := encoding.ReplaceUnsupported(s.enc.NewEncoder()).Bytes(text)
	if err != nil {
		return text
	}
	return append(append([]byte(nil), s.bom...), out...)
}

// declaredLabel returns the lower-cased encoding named by the XML declaration,
// or "" when the declaration is missing or names UTF-8.
func declaredLabel(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	m := declaredEncoding.FindSubmatch(data)
	if m == nil {
		return ""
	}
	label := strings.ToLower(string(m[1]))
	if label == "utf-8" || label == "utf8" {
		return ""
	}
	return label
}

// passThrough is installed as the decoder's CharsetReader: input reaching the
// decoder is already UTF-8 whatever its declaration says.
func passThrough(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
