package types

// Default retrieval parameters.
const (
	// DefaultK is the number of documents returned when the caller does not say.
	DefaultK = 10
	// DefaultAlpha balances lexical and vector scores evenly.
	DefaultAlpha = 0.5
	// DefaultMaxCandidates bounds an unfiltered candidate fetch.
	DefaultMaxCandidates = 10000
	// IntentWeight scales the normalized intent prior added on top of the
	// lexical/vector blend. Fixed, not caller-tunable.
	IntentWeight = 0.1
)

// RetrieveOptions controls a single retrieval call. The zero value is usable;
// Normalize fills in defaults.
type RetrieveOptions struct {
	// K is the number of documents to return.
	K int `json:"k"`
	// Alpha weights the lexical score; the vector score gets 1-alpha.
	// Must be in [0,1]. Nil means DefaultAlpha. Zero is a valid value
	// (pure vector ranking), so the field is a pointer.
	Alpha *float64 `json:"alpha,omitempty"`
	// Filters restricts candidates to chunks whose metadata equals every
	// given value. Keys must name filterable metadata fields.
	Filters map[string]interface{} `json:"filters,omitempty"`
	// UseMMR re-ranks the top documents for diversity.
	UseMMR bool `json:"use_mmr"`
	// MMRLambda is the relevance/diversity trade-off. Nil means derive it
	// from the query; zero is a valid value (maximum diversity). Higher
	// values weight relevance more.
	MMRLambda *float64 `json:"mmr_lambda,omitempty"`
	// SkipIntent disables the intent prior. The prior is on by default.
	SkipIntent bool `json:"skip_intent,omitempty"`
	// ReturnAllChunks expands each ranked document into all of its chunks,
	// in chunk order, instead of only the representative chunk.
	ReturnAllChunks bool `json:"return_all_chunks,omitempty"`
	// UseYearFilter derives a year equality filter from the query text when
	// the query names an explicit year window.
	UseYearFilter bool `json:"use_year_filter,omitempty"`
}

// Normalize fills unset fields with defaults and clamps alpha into [0,1].
// Alpha is replaced with a fresh pointer, never written through, so the
// caller's variable is left untouched.
func (o *RetrieveOptions) Normalize() {
	if o.K <= 0 {
		o.K = DefaultK
	}
	alpha := DefaultAlpha
	if o.Alpha != nil {
		alpha = *o.Alpha
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	o.Alpha = &alpha
}

// Source identifies one source document contributing to an answer.
type Source struct {
	Document string `json:"document"`
	Title    string `json:"title,omitempty"`
	Link     string `json:"link,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// Answer is the result of a question-answering call: the synthesized answer
// plus the distinct source documents behind it, in rank order.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}
