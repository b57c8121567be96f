package rdf

import (
	"strings"
	"testing"
)

func runRdfXml(t *testing.T, xml string, opts ...RdfXmlOption) *RecordingSink {
	t.Helper()
	sink := &RecordingSink{}
	parser := NewRdfXmlParser(AsTripleSink(sink), opts...)
	if err := ParseRdfXml(strings.NewReader(xml), parser); err != nil {
		t.Fatalf("ParseRdfXml: %v", err)
	}
	if !sink.StartCalled || !sink.EndCalled {
		t.Fatalf("expected StartStream and EndStream to be called")
	}
	return sink
}

func findStatement(t *testing.T, sink *RecordingSink, method string) RecordedStatement {
	t.Helper()
	for _, s := range sink.Statements {
		if s.Method == method {
			return s
		}
	}
	t.Fatalf("no %s statement found among %d statements", method, len(sink.Statements))
	return RecordedStatement{}
}

func TestRdfXmlResourceObjectAndLiteral(t *testing.T) {
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/">
  <rdf:Description rdf:about="http://example.org/a">
    <ex:knows rdf:resource="http://example.org/b"/>
    <ex:name xml:lang="en">Ann</ex:name>
  </rdf:Description>
</rdf:RDF>`
	sink := runRdfXml(t, xml)

	knows := findStatement(t, sink, "AddIriRef")
	if knows.Subj.String() != "http://example.org/a" || knows.ObjIRI != "http://example.org/b" {
		t.Fatalf("unexpected rdf:resource statement: %+v", knows)
	}

	name := findStatement(t, sink, "AddPlainLiteral")
	if name.Lexical != "Ann" || name.Lang != "en" {
		t.Fatalf("unexpected literal statement: %+v", name)
	}
}

func TestRdfXmlTypedTagEmitsRdfType(t *testing.T) {
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/">
  <ex:Person rdf:about="http://example.org/a"/>
</rdf:RDF>`
	sink := runRdfXml(t, xml)
	got := findStatement(t, sink, "AddIriRef")
	if got.ObjIRI != "http://example.org/Person" {
		t.Fatalf("expected rdf:type Person, got %+v", got)
	}
}

func TestRdfXmlBlankNodeSubjectWhenNoneGiven(t *testing.T) {
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/">
  <rdf:Description>
    <ex:p xml:lang="en">hi</ex:p>
  </rdf:Description>
</rdf:RDF>`
	sink := runRdfXml(t, xml)
	got := findStatement(t, sink, "AddPlainLiteral")
	if _, ok := got.Subj.(BlankNode); !ok {
		t.Fatalf("expected a blank node subject, got %T", got.Subj)
	}
}

func TestRdfXmlNodeIDObject(t *testing.T) {
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/">
  <rdf:Description rdf:about="http://example.org/a">
    <ex:knows rdf:nodeID="x"/>
  </rdf:Description>
  <rdf:Description rdf:nodeID="x">
    <ex:name>Bo</ex:name>
  </rdf:Description>
</rdf:RDF>`
	sink := runRdfXml(t, xml)
	edge := findStatement(t, sink, "AddNonLiteral")
	bnode, ok := edge.Obj.(BlankNode)
	if !ok {
		t.Fatalf("expected blank node object, got %T", edge.Obj)
	}
	name := findStatement(t, sink, "AddPlainLiteral")
	subjBnode, ok := name.Subj.(BlankNode)
	if !ok || subjBnode.ID != bnode.ID {
		t.Fatalf("expected the same nodeID-mapped blank node, got %+v vs %+v", edge, name)
	}
}

func TestRdfXmlParseTypeResource(t *testing.T) {
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/">
  <rdf:Description rdf:about="http://example.org/a">
    <ex:address rdf:parseType="Resource">
      <ex:city>Springfield</ex:city>
    </ex:address>
  </rdf:Description>
</rdf:RDF>`
	sink := runRdfXml(t, xml)
	if len(sink.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %+v", len(sink.Statements), sink.Statements)
	}
	edge := sink.Statements[0]
	if edge.Method != "AddNonLiteral" || edge.Subj.String() != "http://example.org/a" {
		t.Fatalf("unexpected owning edge: %+v", edge)
	}
	addressBnode, ok := edge.Obj.(BlankNode)
	if !ok {
		t.Fatalf("expected blank node address, got %T", edge.Obj)
	}
	city := sink.Statements[1]
	if city.Method != "AddPlainLiteral" || city.Lexical != "Springfield" {
		t.Fatalf("unexpected city statement: %+v", city)
	}
	if subj, ok := city.Subj.(BlankNode); !ok || subj.ID != addressBnode.ID {
		t.Fatalf("city statement's subject does not match the address blank node: %+v", city)
	}
}

// Scenario 5: rdf:parseType="Collection" weaves an rdf:first/rdf:rest/rdf:nil
// list whose head is the owning edge's object.
func TestRdfXmlCollection(t *testing.T) {
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/">
  <rdf:Description rdf:about="http://example.org/outer">
    <ex:p rdf:parseType="Collection">
      <rdf:Description rdf:about="http://example.org/x"/>
      <rdf:Description rdf:about="http://example.org/y"/>
    </ex:p>
  </rdf:Description>
</rdf:RDF>`
	sink := runRdfXml(t, xml)

	owning := sink.Statements[0]
	if owning.Method != "AddNonLiteral" || owning.Subj.String() != "http://example.org/outer" {
		t.Fatalf("unexpected owning edge: %+v", owning)
	}
	head, ok := owning.Obj.(BlankNode)
	if !ok {
		t.Fatalf("expected a blank node list head, got %T", owning.Obj)
	}

	var firsts, rests []RecordedStatement
	for _, s := range sink.Statements[1:] {
		switch {
		case s.Pred.String() == rdfNS+"first":
			firsts = append(firsts, s)
		case s.Pred.String() == rdfNS+"rest":
			rests = append(rests, s)
		}
	}
	if len(firsts) != 2 || len(rests) != 2 {
		t.Fatalf("expected 2 rdf:first and 2 rdf:rest statements, got %d/%d", len(firsts), len(rests))
	}
	if subj, ok := firsts[0].Subj.(BlankNode); !ok || subj.ID != head.ID || firsts[0].Obj.String() != "http://example.org/x" {
		t.Fatalf("unexpected first cell: %+v", firsts[0])
	}

	cell, ok := rests[0].Obj.(BlankNode)
	if rests[0].Method != "AddNonLiteral" || !ok {
		t.Fatalf("expected the first rdf:rest to point to a cell blank node, got %+v", rests[0])
	}
	if subj, ok := firsts[1].Subj.(BlankNode); !ok || subj.ID != cell.ID || firsts[1].Obj.String() != "http://example.org/y" {
		t.Fatalf("unexpected second cell: %+v", firsts[1])
	}
	if rests[1].Method != "AddIriRef" || rests[1].ObjIRI != rdfNS+"nil" {
		t.Fatalf("expected the list to terminate with rdf:nil, got %+v", rests[1])
	}
}

// Scenario 6: a property element with rdf:ID also emits the four
// reification triples anchored at base#id.
func TestRdfXmlReification(t *testing.T) {
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/">
  <rdf:Description rdf:about="http://ex/s">
    <ex:p rdf:ID="r">v</ex:p>
  </rdf:Description>
</rdf:RDF>`
	sink := runRdfXml(t, xml, WithBaseIRI("http://ex/"))

	if len(sink.Statements) != 5 {
		t.Fatalf("expected 5 statements (1 value + 4 reification), got %d: %+v", len(sink.Statements), sink.Statements)
	}

	value := sink.Statements[0]
	if value.Method != "AddPlainLiteral" || value.Lexical != "v" {
		t.Fatalf("unexpected value statement: %+v", value)
	}

	const stmtIRI = "http://ex/#r"
	typ := sink.Statements[1]
	if typ.Subj.String() != stmtIRI || typ.ObjIRI != rdfNS+"Statement" {
		t.Fatalf("unexpected rdf:type statement: %+v", typ)
	}
	subjTriple := sink.Statements[2]
	if subjTriple.Subj.String() != stmtIRI || subjTriple.Pred.String() != rdfNS+"subject" || subjTriple.Obj.String() != "http://ex/s" {
		t.Fatalf("unexpected rdf:subject statement: %+v", subjTriple)
	}
	predTriple := sink.Statements[3]
	if predTriple.Pred.String() != rdfNS+"predicate" || predTriple.ObjIRI != "http://example.org/p" {
		t.Fatalf("unexpected rdf:predicate statement: %+v", predTriple)
	}
	objTriple := sink.Statements[4]
	if objTriple.Pred.String() != rdfNS+"object" || objTriple.Lexical != "v" {
		t.Fatalf("unexpected rdf:object statement: %+v", objTriple)
	}
}

func TestRdfXmlAmbiguousSubjectIsAnError(t *testing.T) {
	sink := &RecordingSink{}
	parser := NewRdfXmlParser(AsTripleSink(sink))
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="http://example.org/a" rdf:nodeID="b"/>
</rdf:RDF>`
	if err := ParseRdfXml(strings.NewReader(xml), parser); err == nil {
		t.Fatal("expected an error for a node element with both rdf:about and rdf:nodeID")
	}
}

func TestRdfXmlSchemaViolationTagRejectedAsProperty(t *testing.T) {
	sink := &RecordingSink{}
	parser := NewRdfXmlParser(AsTripleSink(sink))
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="http://example.org/a">
    <rdf:about>oops</rdf:about>
  </rdf:Description>
</rdf:RDF>`
	err := ParseRdfXml(strings.NewReader(xml), parser)
	if err == nil {
		t.Fatal("expected an error for rdf:about used as a property element")
	}
	if Code(err) != ErrCodeSchema {
		t.Fatalf("expected ErrCodeSchema, got %v", Code(err))
	}
}

func TestCodeClassifiesParserErrors(t *testing.T) {
	sink := &RecordingSink{}
	p := NewNQuadsParser(sink)
	if err := p.StartStream(); err != nil {
		t.Fatalf("StartStream: %v", err)
	}
	input := []byte(`<http://s> <http://p> <http://o`)
	if err := p.Process(input, 0, len(input)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	err := p.EndStream()
	if Code(err) != ErrCodeStructural {
		t.Fatalf("expected ErrCodeStructural, got %v", Code(err))
	}
}

func TestQNameOfReconstructsRdfPrefix(t *testing.T) {
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/">
  <rdf:Description rdf:about="http://example.org/a">
    <ex:body rdf:parseType="Literal"><rdf:value>v</rdf:value></ex:body>
  </rdf:Description>
</rdf:RDF>`
	sink := runRdfXml(t, xml)
	got := findStatement(t, sink, "AddTypedLiteral")
	if !strings.Contains(got.Lexical, "<rdf:value>") {
		t.Fatalf("expected the rdf: prefix to be reconstructed in the XML literal, got %q", got.Lexical)
	}
}

func TestRdfXmlDatatypedLiteral(t *testing.T) {
	xml := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/" xmlns:xsd="http://www.w3.org/2001/XMLSchema#">
  <rdf:Description rdf:about="http://example.org/a">
    <ex:age rdf:datatype="http://www.w3.org/2001/XMLSchema#integer">42</ex:age>
  </rdf:Description>
</rdf:RDF>`
	sink := runRdfXml(t, xml)
	got := findStatement(t, sink, "AddTypedLiteral")
	if got.Lexical != "42" || got.DatatypeIRI != "http://www.w3.org/2001/XMLSchema#integer" {
		t.Fatalf("unexpected typed literal: %+v", got)
	}
}
