package core

// HandlerID names a registered workflow handler. The set is closed so the
// router resolves transitions against known identifiers rather than free-form
// strings; unknown values coming from handler output fall back to termination.
type HandlerID string

const (
	// HandlerLanguageDetection identifies the language identification handler.
	HandlerLanguageDetection HandlerID = "language_detection"
	// HandlerClassification identifies the issue classification handler.
	HandlerClassification HandlerID = "classification"
	// HandlerImageReview identifies the image review handler.
	HandlerImageReview HandlerID = "image_review"
)

// Directive is a handler's instruction naming the next handler to run, or the
// terminate sentinel. The zero value means "undetermined, ask the router",
// which the router resolves to termination to guarantee forward progress.
type Directive string

const (
	// DirectiveNone is the unset directive.
	DirectiveNone Directive = ""
	// DirectiveTerminate ends the workflow. It is internal to the engine and
	// must never appear in an externally visible result.
	DirectiveTerminate Directive = "__terminate__"
)

// DirectiveFor returns the directive that routes to the given handler.
func DirectiveFor(id HandlerID) Directive { return Directive(id) }

// IsUnset reports whether the directive is the zero value.
func (d Directive) IsUnset() bool { return d == DirectiveNone }

// IsTerminate reports whether the directive is the terminate sentinel.
func (d Directive) IsTerminate() bool { return d == DirectiveTerminate }

// HandlerID returns the handler identifier named by the directive. The second
// return is false for the unset directive and the terminate sentinel.
func (d Directive) HandlerID() (HandlerID, bool) {
	if d.IsUnset() || d.IsTerminate() {
		return "", false
	}
	return HandlerID(d), true
}
