package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

var (
	rdfType        = IRI{Value: rdfNS + "type"}
	rdfFirst       = IRI{Value: rdfNS + "first"}
	rdfRest        = IRI{Value: rdfNS + "rest"}
	rdfNil         = rdfNS + "nil"
	rdfXMLLiteral  = rdfNS + "XMLLiteral"
	rdfStatement   = rdfNS + "Statement"
	rdfSubject     = IRI{Value: rdfNS + "subject"}
	rdfPredicate   = IRI{Value: rdfNS + "predicate"}
	rdfObject      = IRI{Value: rdfNS + "object"}
)

// schemaViolationTags are forbidden as node-element tags or non-reserved
// property/attribute names (spec.md §4.2, "Schema-violation attribute
// set").
var schemaViolationTags = map[string]bool{
	rdfNS + "parseType":          true,
	rdfNS + "aboutEach":          true,
	rdfNS + "datatype":           true,
	rdfNS + "bagID":              true,
	rdfNS + "about":              true,
	rdfNS + "resource":           true,
	rdfNS + "nodeID":             true,
	rdfNS + "ID":                 true,
	rdfNS + "aboutEachPrefix":    true,
}

type rdfxmlMode int

const (
	modeInsideOfProperty rdfxmlMode = iota + 1
	modeInsideOfResource
	modeParseTypeLiteral
	modeParseTypeCollection
	modeParseTypeResource
)

// elementFrame is pushed on every StartElement outside a parseType="Literal"
// body (elements inside one are only serialized) and popped, unconditionally
// restoring mode/lang/base, on the matching EndElement. This replaces the
// original's three parallel stacks (modeStack/langStack/baseStack) and its
// partial "TODO: fix modeStack" restoration with one frame per element
// (spec.md §9, DESIGN.md "RDF/XML: endElement mode restoration").
type elementFrame struct {
	mode rdfxmlMode
	lang string
	base string
}

// subjectFrame is pushed only when a new enclosing subject is established:
// by a node element, or by a parseType="Resource"/"Collection" property
// element for its blank node. Other property elements share their parent's
// subject frame.
type subjectFrame struct {
	subj    Term
	liIndex int
}

// collectionFrame tracks one open rdf:parseType="Collection" list: the
// current tail cell (initially the head bnode) and the subject-stack depth
// recorded right after the head frame was pushed, used to tell "closing a
// list item" from "closing the collection-bearing property element itself"
// apart in EndElement. See DESIGN.md "RDF/XML: Collection-closing
// dispatch".
type collectionFrame struct {
	tail      Term
	baseDepth int
	started   bool
}

// RdfXmlParser is an XML-event-driven parser for RDF/XML, implementing
// SAXReceiver. It is fed by a source adapter (see rdfxml_source.go's
// ParseRdfXml, built on encoding/xml) or by any other caller that can
// translate its input into the eight SAXReceiver events.
//
// RdfXmlParser is not safe for concurrent use.
type RdfXmlParser struct {
	sink TripleSink
	opts RdfXmlOptions

	mode rdfxmlMode
	lang string
	base string

	elementStack   []elementFrame
	subjectStack   []subjectFrame
	collectionStack []collectionFrame

	bnodes *bnodeMinter

	// property-element in-progress state
	pred          IRI
	captureLiteral bool
	chars         strings.Builder
	datatype      string
	reifyIRI      string

	// parseType="Literal" verbatim capture
	parseDepth   int
	literalText  strings.Builder
	literalNS    []string // accumulated "xmlns:prefix=\"uri\"" fragments since entering literal mode

	started bool
}

// NewRdfXmlParser creates a parser driving sink.
func NewRdfXmlParser(sink TripleSink, opts ...RdfXmlOption) *RdfXmlParser {
	options := defaultRdfXmlOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &RdfXmlParser{
		sink:   sink,
		opts:   options,
		mode:   modeInsideOfProperty,
		base:   options.BaseIRI,
		bnodes: newBnodeMinter(),
	}
}

func (p *RdfXmlParser) StartDocument() error {
	p.mode = modeInsideOfProperty
	p.lang = ""
	p.base = normalizeBaseSetter(p.opts.BaseIRI)
	p.elementStack = nil
	p.subjectStack = nil
	p.collectionStack = nil
	p.started = true
	return p.sink.StartStream()
}

func (p *RdfXmlParser) EndDocument() error {
	return p.sink.EndStream()
}

func (p *RdfXmlParser) StartPrefixMapping(prefix, uri string) error {
	if p.parseDepth > 0 && p.mode == modeParseTypeLiteral {
		name := "xmlns"
		if prefix != "" {
			name = "xmlns:" + prefix
		}
		p.literalNS = append(p.literalNS, fmt.Sprintf(` %s="%s"`, name, escapeXMLAttr(uri)))
	}
	return nil
}

func (p *RdfXmlParser) Comment(text string) error {
	if p.parseDepth > 0 && p.mode == modeParseTypeLiteral {
		p.literalText.WriteString("<!--")
		p.literalText.WriteString(text)
		p.literalText.WriteString("-->")
	}
	return nil
}

func (p *RdfXmlParser) ProcessingInstruction(target, data string) error {
	if p.parseDepth > 0 && p.mode == modeParseTypeLiteral {
		p.literalText.WriteString("<?")
		p.literalText.WriteString(target)
		if data != "" {
			p.literalText.WriteString(" ")
			p.literalText.WriteString(data)
		}
		p.literalText.WriteString("?>")
	}
	return nil
}

func (p *RdfXmlParser) Characters(text string) error {
	if p.mode == modeParseTypeLiteral || p.captureLiteral {
		p.literalText.WriteString(text)
		p.chars.WriteString(text)
	}
	return nil
}

// StartElement dispatches to the node-element or property-element
// production depending on the current mode, per spec.md §4.2.
func (p *RdfXmlParser) StartElement(nsURI, localName, qName string, attrs []Attr) error {
	if p.parseDepth > 0 {
		p.parseDepth++
		if p.mode == modeParseTypeLiteral {
			p.serializeOpenTag(qName, attrs)
			return nil
		}
	}

	frame := elementFrame{mode: p.mode, lang: p.lang, base: p.base}
	p.elementStack = append(p.elementStack, frame)
	if err := p.processLangAndBase(attrs); err != nil {
		return err
	}

	tagIRI := nsURI + localName

	// The rdf:RDF wrapper, if present, is not itself a node element — its
	// children are. Skip straight through it at the document root.
	if tagIRI == rdfNS+"RDF" && p.mode == modeInsideOfProperty && len(p.subjectStack) == 0 {
		return nil
	}

	switch p.mode {
	case modeInsideOfProperty, modeParseTypeCollection:
		return p.startNodeElement(tagIRI, qName, attrs)
	case modeInsideOfResource, modeParseTypeResource:
		return p.startPropertyElement(tagIRI, qName, attrs)
	default:
		return p.errorf(ErrCodeSchema, "unexpected start element %s in current mode", qName)
	}
}

func (p *RdfXmlParser) processLangAndBase(attrs []Attr) error {
	lang := p.lang
	base := p.base
	for _, a := range attrs {
		switch {
		case a.QName == "xml:lang":
			lang = a.Value
		case a.QName == "xml:base":
			resolved, err := ResolveIRI(truncateAtFragment(base), a.Value)
			if err != nil {
				return p.errorf(ErrCodeInvalidIRI, "malformed xml:base %q: %v", a.Value, err)
			}
			base = normalizeBaseSetter(resolved)
		}
	}
	p.lang = lang
	p.base = base
	return nil
}

// truncateAtFragment drops a trailing "#..." fragment, giving the
// directory-like form a relative xml:base reference resolves against.
func truncateAtFragment(base string) string {
	if idx := strings.LastIndexByte(base, '#'); idx >= 0 {
		return base[:idx]
	}
	return base
}

// normalizeBaseSetter appends a trailing "#" to a newly-set base if it
// doesn't already end in one, so resolveNoResolve's plain concatenation
// (base + id) yields base#id (spec.md §4.2's baseStack note).
func normalizeBaseSetter(base string) string {
	if base == "" || strings.HasSuffix(base, "#") {
		return base
	}
	return base + "#"
}

func (p *RdfXmlParser) startNodeElement(tagIRI, qName string, attrs []Attr) error {
	if tagIRI == rdfNS+"li" {
		return p.errorf(ErrCodeSchema, "rdf:li is not allowed as a node element")
	}
	subj, err := p.getSubject(attrs)
	if err != nil {
		return err
	}

	if p.mode != modeParseTypeCollection && len(p.subjectStack) > 0 {
		enclosing := p.subjectStack[len(p.subjectStack)-1].subj
		if err := p.sink.AddNonLiteral(enclosing, p.pred, subj); err != nil {
			return err
		}
	}

	if tagIRI != rdfNS+"Description" {
		if err := p.sink.AddIriRef(subj, rdfType, tagIRI); err != nil {
			return err
		}
	}

	for _, a := range attrs {
		if err := p.processNodeAttr(subj, a); err != nil {
			return err
		}
	}

	p.subjectStack = append(p.subjectStack, subjectFrame{subj: subj, liIndex: 1})
	if p.mode == modeInsideOfProperty {
		p.mode = modeInsideOfResource
	}
	return nil
}

func (p *RdfXmlParser) processNodeAttr(subj Term, a Attr) error {
	if a.NSURI == "http://www.w3.org/XML/1998/namespace" || strings.HasPrefix(a.QName, "xml") {
		return nil
	}
	tagIRI := a.NSURI + a.LocalName
	if schemaViolationTags[tagIRI] {
		return nil
	}
	if tagIRI == rdfNS+"type" {
		resolved, err := ResolveIRI(p.base, a.Value)
		if err != nil {
			return p.errorf(ErrCodeInvalidIRI, "malformed rdf:type value %q: %v", a.Value, err)
		}
		return p.sink.AddIriRef(subj, rdfType, resolved)
	}
	return p.sink.AddPlainLiteral(subj, IRI{Value: tagIRI}, a.Value, p.lang)
}

// getSubject resolves the subject of a node element from at most one of
// rdf:about / rdf:ID / rdf:nodeID, minting a fresh blank node if none is
// present.
func (p *RdfXmlParser) getSubject(attrs []Attr) (Term, error) {
	var about, id, nodeID string
	count := 0
	for _, a := range attrs {
		tagIRI := a.NSURI + a.LocalName
		switch tagIRI {
		case rdfNS + "about":
			about = a.Value
			count++
		case rdfNS + "ID":
			id = a.Value
			count++
		case rdfNS + "nodeID":
			nodeID = a.Value
			count++
		}
	}
	if count > 1 {
		return nil, p.errorf(ErrCodeSchema, "at most one of rdf:about, rdf:ID, rdf:nodeID is allowed")
	}
	switch {
	case about != "":
		resolved, err := ResolveIRI(p.base, about)
		if err != nil {
			return nil, p.errorf(ErrCodeInvalidIRI, "malformed rdf:about %q: %v", about, err)
		}
		return IRI{Value: resolved}, nil
	case id != "":
		resolved, err := ResolveIRINoResolve(p.base, id)
		if err != nil {
			return nil, p.errorf(ErrCodeInvalidIRI, "malformed rdf:ID %q: %v", id, err)
		}
		return IRI{Value: resolved}, nil
	case nodeID != "":
		if !IsValidNCName(nodeID) {
			return nil, p.errorf(ErrCodeInvalidIRI, "rdf:nodeID %q is not a valid NCName", nodeID)
		}
		return BlankNode{ID: p.bnodes.forLabel(nodeID)}, nil
	default:
		return BlankNode{ID: p.bnodes.fresh()}, nil
	}
}

func (p *RdfXmlParser) startPropertyElement(tagIRI, qName string, attrs []Attr) error {
	if tagIRI == rdfNS+"nil" || tagIRI == rdfNS+"Description" || schemaViolationTags[tagIRI] {
		return p.errorf(ErrCodeSchema, "%s is not allowed as a property element", qName)
	}
	if !IsAbsoluteIRI(tagIRI) {
		return p.errorf(ErrCodeInvalidIRI, "property element tag %q does not resolve to an absolute IRI", qName)
	}

	predIRI := tagIRI
	liIndex := p.subjectStack[len(p.subjectStack)-1].liIndex
	if tagIRI == rdfNS+"li" {
		predIRI = rdfNS + "_" + strconv.Itoa(liIndex)
		p.subjectStack[len(p.subjectStack)-1].liIndex = liIndex + 1
	}
	p.pred = IRI{Value: predIRI}

	var resource, nodeID, parseType, datatype string
	haveResource, haveNodeID, haveParseType, haveDatatype := false, false, false, false
	for _, a := range attrs {
		switch a.NSURI + a.LocalName {
		case rdfNS + "ID":
			resolved, err := ResolveIRINoResolve(p.base, a.Value)
			if err != nil {
				return p.errorf(ErrCodeInvalidIRI, "malformed rdf:ID %q: %v", a.Value, err)
			}
			p.reifyIRI = resolved
		case rdfNS + "resource":
			resource = a.Value
			haveResource = true
		case rdfNS + "nodeID":
			nodeID = a.Value
			haveNodeID = true
		case rdfNS + "parseType":
			parseType = a.Value
			haveParseType = true
		case rdfNS + "datatype":
			datatype = a.Value
			haveDatatype = true
		}
	}
	if haveResource && haveNodeID {
		return p.errorf(ErrCodeSchema, "rdf:resource and rdf:nodeID cannot both be present")
	}
	if haveParseType {
		for _, a := range attrs {
			tagIRI := a.NSURI + a.LocalName
			if strings.HasPrefix(a.QName, "xml") || tagIRI == rdfNS+"ID" || tagIRI == rdfNS+"parseType" {
				continue
			}
			return p.errorf(ErrCodeSchema, "rdf:parseType cannot be combined with %s", a.QName)
		}
	}

	p.captureLiteral = true
	p.chars.Reset()
	p.datatype = ""
	if haveDatatype {
		resolved, err := ResolveIRI(p.base, datatype)
		if err != nil {
			return p.errorf(ErrCodeInvalidIRI, "malformed rdf:datatype %q: %v", datatype, err)
		}
		p.datatype = resolved
	}
	p.mode = modeInsideOfProperty

	switch {
	case haveResource:
		resolved, err := ResolveIRI(p.base, resource)
		if err != nil {
			return p.errorf(ErrCodeInvalidIRI, "malformed rdf:resource %q: %v", resource, err)
		}
		p.captureLiteral = false
		return p.emitPropertyValue(BlankNode{}, resolved, true)
	case haveNodeID:
		if !IsValidNCName(nodeID) {
			return p.errorf(ErrCodeInvalidIRI, "rdf:nodeID %q is not a valid NCName", nodeID)
		}
		p.captureLiteral = false
		return p.emitPropertyValue(BlankNode{ID: p.bnodes.forLabel(nodeID)}, "", false)
	case haveParseType && parseType == "Literal":
		p.captureLiteral = false
		p.mode = modeParseTypeLiteral
		p.parseDepth = 1
		p.literalText.Reset()
		p.literalNS = nil
		return nil
	case haveParseType && parseType == "Resource":
		subj := BlankNode{ID: p.bnodes.fresh()}
		if err := p.emitOwningEdge(subj); err != nil {
			return err
		}
		p.subjectStack = append(p.subjectStack, subjectFrame{subj: subj, liIndex: 1})
		p.mode = modeParseTypeResource
		return nil
	case haveParseType && parseType == "Collection":
		head := BlankNode{ID: p.bnodes.fresh()}
		if err := p.emitOwningEdge(head); err != nil {
			return err
		}
		p.subjectStack = append(p.subjectStack, subjectFrame{subj: head, liIndex: 1})
		p.collectionStack = append(p.collectionStack, collectionFrame{tail: head, baseDepth: len(p.subjectStack)})
		p.mode = modeParseTypeCollection
		return nil
	default:
		for _, a := range attrs {
			tagIRI := a.NSURI + a.LocalName
			if strings.HasPrefix(a.QName, "xml") || tagIRI == rdfNS+"ID" || tagIRI == rdfNS+"datatype" {
				continue
			}
			bnode := BlankNode{ID: p.bnodes.fresh()}
			if err := p.emitOwningEdge(bnode); err != nil {
				return err
			}
			if err := p.sink.AddPlainLiteral(bnode, IRI{Value: tagIRI}, a.Value, p.lang); err != nil {
				return err
			}
			p.captureLiteral = false
		}
		return nil
	}
}

// emitOwningEdge emits the edge from the current subject to a fresh child
// value minted for rdf:parseType="Resource"/"Collection" or an
// otherwise-attributed property, and disables literal capture.
func (p *RdfXmlParser) emitOwningEdge(obj Term) error {
	p.captureLiteral = false
	subj := p.subjectStack[len(p.subjectStack)-1].subj
	return p.sink.AddNonLiteral(subj, p.pred, obj)
}

// emitPropertyValue emits a property's value as either a blank node
// (asIRI=false) or a known IRI (asIRI=true), firing reification if an
// rdf:ID was recorded on this property element.
func (p *RdfXmlParser) emitPropertyValue(bnode BlankNode, iriValue string, asIRI bool) error {
	subj := p.subjectStack[len(p.subjectStack)-1].subj
	var obj Term
	if asIRI {
		if err := p.sink.AddIriRef(subj, p.pred, iriValue); err != nil {
			return err
		}
		obj = IRI{Value: iriValue}
	} else {
		if err := p.sink.AddNonLiteral(subj, p.pred, bnode); err != nil {
			return err
		}
		obj = bnode
	}
	return p.reify(subj, obj)
}

func (p *RdfXmlParser) reify(subj, obj Term) error {
	if p.reifyIRI == "" {
		return nil
	}
	stmt := IRI{Value: p.reifyIRI}
	p.reifyIRI = ""
	if err := p.sink.AddIriRef(stmt, rdfType, rdfStatement); err != nil {
		return err
	}
	if err := p.sink.AddNonLiteral(stmt, rdfSubject, subj); err != nil {
		return err
	}
	if err := p.sink.AddIriRef(stmt, rdfPredicate, p.pred.Value); err != nil {
		return err
	}
	switch o := obj.(type) {
	case Literal:
		if o.Datatype.Value != "" {
			return p.sink.AddTypedLiteral(stmt, rdfObject, o.Lexical, o.Datatype.Value)
		}
		return p.sink.AddPlainLiteral(stmt, rdfObject, o.Lexical, o.Lang)
	case IRI:
		return p.sink.AddIriRef(stmt, rdfObject, o.Value)
	default:
		return p.sink.AddNonLiteral(stmt, rdfObject, obj)
	}
}

// EndElement unwinds whatever this element's mode requires (literal
// serialization pass-through, subject-stack pop, collection weaving, or
// literal-value emission), then unconditionally restores mode/lang/base
// from the pushed frame.
func (p *RdfXmlParser) EndElement(nsURI, localName, qName string) error {
	if p.parseDepth > 0 {
		p.parseDepth--
		if p.mode == modeParseTypeLiteral && p.parseDepth > 0 {
			p.literalText.WriteString("</")
			p.literalText.WriteString(qName)
			p.literalText.WriteString(">")
			return nil
		}
	}

	var actionErr error
	switch p.mode {
	case modeParseTypeResource, modeInsideOfResource:
		p.subjectStack = p.subjectStack[:len(p.subjectStack)-1]
	case modeParseTypeCollection:
		actionErr = p.closeCollectionElement()
	case modeInsideOfProperty:
		if p.captureLiteral {
			actionErr = p.emitCapturedLiteral()
		}
	case modeParseTypeLiteral:
		actionErr = p.emitXMLLiteral()
	}
	if actionErr != nil {
		return actionErr
	}

	frame := p.elementStack[len(p.elementStack)-1]
	p.elementStack = p.elementStack[:len(p.elementStack)-1]
	p.mode = frame.mode
	p.lang = frame.lang
	p.base = frame.base
	return nil
}

func (p *RdfXmlParser) closeCollectionElement() error {
	beforeLen := len(p.subjectStack)
	item := p.subjectStack[beforeLen-1].subj
	p.subjectStack = p.subjectStack[:beforeLen-1]
	coll := &p.collectionStack[len(p.collectionStack)-1]

	if beforeLen > coll.baseDepth {
		if !coll.started {
			coll.started = true
			if err := p.sink.AddNonLiteral(coll.tail, rdfFirst, item); err != nil {
				return err
			}
		} else {
			cell := BlankNode{ID: p.bnodes.fresh()}
			if err := p.sink.AddNonLiteral(cell, rdfFirst, item); err != nil {
				return err
			}
			if err := p.sink.AddNonLiteral(coll.tail, rdfRest, cell); err != nil {
				return err
			}
			coll.tail = cell
		}
		return nil
	}

	if err := p.sink.AddIriRef(coll.tail, rdfRest, rdfNil); err != nil {
		return err
	}
	p.collectionStack = p.collectionStack[:len(p.collectionStack)-1]
	return nil
}

func (p *RdfXmlParser) emitCapturedLiteral() error {
	subj := p.subjectStack[len(p.subjectStack)-1].subj
	text := p.chars.String()
	var obj Term
	var err error
	if p.datatype != "" {
		err = p.sink.AddTypedLiteral(subj, p.pred, text, p.datatype)
		obj = Literal{Lexical: text, Datatype: IRI{Value: p.datatype}}
	} else {
		err = p.sink.AddPlainLiteral(subj, p.pred, text, p.lang)
		obj = Literal{Lexical: text, Lang: p.lang}
	}
	if err != nil {
		return err
	}
	p.captureLiteral = false
	return p.reify(subj, obj)
}

func (p *RdfXmlParser) emitXMLLiteral() error {
	subj := p.subjectStack[len(p.subjectStack)-1].subj
	text := p.literalText.String()
	if err := p.sink.AddTypedLiteral(subj, p.pred, text, rdfXMLLiteral); err != nil {
		return err
	}
	return p.reify(subj, Literal{Lexical: text, Datatype: IRI{Value: rdfXMLLiteral}})
}

func (p *RdfXmlParser) serializeOpenTag(qName string, attrs []Attr) {
	p.literalText.WriteString("<")
	p.literalText.WriteString(qName)
	for _, ns := range p.literalNS {
		p.literalText.WriteString(ns)
	}
	p.literalNS = nil
	for _, a := range attrs {
		p.literalText.WriteString(" ")
		p.literalText.WriteString(a.QName)
		p.literalText.WriteString(`="`)
		p.literalText.WriteString(escapeXMLAttr(a.Value))
		p.literalText.WriteString(`"`)
	}
	p.literalText.WriteString(">")
}

func escapeXMLAttr(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}

func (p *RdfXmlParser) errorf(code ErrorCode, format string, args ...interface{}) error {
	return &ParseError{Format: "rdfxml", Offset: -1, Err: newCodedError(code, fmt.Sprintf(format, args...))}
}
