package rdf

// GraphErrorClass labels which parsing phase an error notification came
// from, passed to GraphErrorHandler.Error alongside the message.
type GraphErrorClass string

const (
	GraphErrorClassLexical   GraphErrorClass = "lexical"
	GraphErrorClassStructural GraphErrorClass = "structural"
	GraphErrorClassSchema    GraphErrorClass = "schema"
	GraphErrorClassIRI       GraphErrorClass = "iri"
)

// GraphErrorHandler receives every N-Quads parse error, synchronously,
// before error-recovery runs — regardless of whether recovery is enabled.
// This is the processor-graph-handler configuration key from spec.md §6.
type GraphErrorHandler interface {
	Error(class GraphErrorClass, message string)
}

// GraphErrorHandlerFunc adapts a function to a GraphErrorHandler.
type GraphErrorHandlerFunc func(class GraphErrorClass, message string)

func (f GraphErrorHandlerFunc) Error(class GraphErrorClass, message string) { f(class, message) }

// NQuadsOption configures an NQuadsParser.
type NQuadsOption func(*NQuadsOptions)

// NQuadsOptions holds the two configuration keys spec.md §6 names for the
// N-Quads parser.
type NQuadsOptions struct {
	// GraphHandler, if set, is notified of every parse error.
	GraphHandler GraphErrorHandler
	// RecoverFromErrors, if true, discards the current statement and skips
	// to the next '.' on error instead of failing fast. This is the
	// enable-error-recovery configuration key.
	RecoverFromErrors bool
}

// WithGraphErrorHandler sets the processor-graph-handler.
func WithGraphErrorHandler(h GraphErrorHandler) NQuadsOption {
	return func(o *NQuadsOptions) { o.GraphHandler = h }
}

// WithErrorRecovery sets enable-error-recovery.
func WithErrorRecovery(recover bool) NQuadsOption {
	return func(o *NQuadsOptions) { o.RecoverFromErrors = recover }
}

func defaultNQuadsOptions() NQuadsOptions {
	return NQuadsOptions{}
}

// RdfXmlOptions holds RdfXmlParser configuration. RDF/XML always fails
// fast (spec.md §7), so there is no recovery toggle here; BaseIRI seeds the
// xml:base inheritance chain for documents that don't declare their own.
type RdfXmlOptions struct {
	BaseIRI string
}

// RdfXmlOption configures an RdfXmlParser.
type RdfXmlOption func(*RdfXmlOptions)

// WithBaseIRI sets the initial base IRI used before any xml:base attribute
// is seen.
func WithBaseIRI(base string) RdfXmlOption {
	return func(o *RdfXmlOptions) { o.BaseIRI = base }
}

func defaultRdfXmlOptions() RdfXmlOptions {
	return RdfXmlOptions{}
}
