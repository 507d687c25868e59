// Package xmldoc provides a lossless XML document tree for in-place edits.
//
// Project files are hand-maintained and reviewed in diffs, so rewriting a
// single value must not reformat the rest of the file. Parse keeps the raw
// bytes of every token (declaration, comments, whitespace, attribute quoting,
// namespace prefixes) and Bytes writes them back unchanged. Only elements
// touched through SetText or AppendElement are re-rendered.
//
// UTF-16 files and files in a legacy code page are converted to UTF-8 for
// parsing and converted back by Bytes, byte order mark included.
//
// Element names are namespace-resolved, so lookups compare against the
// namespace of the document's root:
//
//	doc, err := xmldoc.Parse(data)
//	if err != nil {
//	    return err
//	}
//	ns := doc.Root.Name.Space
//	pg := doc.Root.Find(xml.Name{Space: ns, Local: "PropertyGroup"})
//	pg.AppendElement("Version", "1.2.3")
//	os.WriteFile(path, doc.Bytes(), 0o644)
package xmldoc
