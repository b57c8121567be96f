package rdf

import (
	"encoding/xml"
	"io"
	"strings"
)

// ParseRdfXml reads RDF/XML from r and drives receiver's SAXReceiver events,
// using encoding/xml.Decoder as the underlying tokenizer (grounded in
// other_examples/kierdavis-argo__rdfxml.go's token-loop approach, generalized
// from its single-purpose triple-channel consumer into the full
// SAXReceiver surface RdfXmlParser needs).
//
// Unlike a true SAX parser, encoding/xml.Decoder resolves namespace prefixes
// for element and attribute names itself; xmlnsAttrsOf recovers the raw
// prefix declarations so StartPrefixMapping can still be synthesized for
// rdf:parseType="Literal" verbatim re-serialization.
func ParseRdfXml(r io.Reader, receiver SAXReceiver) error {
	decoder := xml.NewDecoder(r)

	if err := receiver.StartDocument(); err != nil {
		return err
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			for _, prefix := range xmlnsAttrsOf(t) {
				if err := receiver.StartPrefixMapping(prefix.prefix, prefix.uri); err != nil {
					return err
				}
			}
			attrs := make([]Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				attrs = append(attrs, Attr{
					NSURI:     a.Name.Space,
					LocalName: a.Name.Local,
					QName:     qNameOf(a.Name),
					Value:     a.Value,
				})
			}
			if err := receiver.StartElement(t.Name.Space, t.Name.Local, qNameOf(t.Name), attrs); err != nil {
				return err
			}
		case xml.EndElement:
			if err := receiver.EndElement(t.Name.Space, t.Name.Local, qNameOf(t.Name)); err != nil {
				return err
			}
		case xml.CharData:
			if err := receiver.Characters(string(t)); err != nil {
				return err
			}
		case xml.Comment:
			if err := receiver.Comment(string(t)); err != nil {
				return err
			}
		case xml.ProcInst:
			if err := receiver.ProcessingInstruction(t.Target, string(t.Inst)); err != nil {
				return err
			}
		case xml.Directive:
			// DTDs and other directives carry no RDF/XML grammar meaning.
		}
	}

	return receiver.EndDocument()
}

type xmlnsAttr struct {
	prefix string
	uri    string
}

// xmlnsAttrsOf recovers namespace-declaration attributes from a token that
// encoding/xml has already consumed into Name.Space resolution, so a
// parseType="Literal" capture can still reproduce them verbatim.
func xmlnsAttrsOf(t xml.StartElement) []xmlnsAttr {
	var out []xmlnsAttr
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "xmlns":
			out = append(out, xmlnsAttr{prefix: a.Name.Local, uri: a.Value})
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			out = append(out, xmlnsAttr{prefix: "", uri: a.Value})
		}
	}
	return out
}

// qNameOf reconstructs a qualified name's printable form. encoding/xml does
// not retain the original prefix once it resolves Name.Space to a URI, so
// this is a best-effort reconstruction. It is used for verbatim literal
// re-serialization and error messages, and RdfXmlParser recognizes xml:lang,
// xml:base and other xml-prefixed attributes by it (the xml namespace always
// maps to "xml:"); other grammar decisions key off Space/Local.
func qNameOf(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if name.Space == "http://www.w3.org/XML/1998/namespace" {
		return "xml:" + name.Local
	}
	if name.Space == rdfNS {
		return "rdf:" + name.Local
	}
	trimmed := strings.TrimRight(name.Space, "/#")
	if idx := strings.LastIndexAny(trimmed, "/#"); idx >= 0 {
		return trimmed[idx+1:] + ":" + name.Local
	}
	return name.Local
}
