package cache

// GraphKeyOpts are the build options that change a built graph.
type GraphKeyOpts struct {
	Focus    string   `json:"focus,omitempty"`
	Concepts []string `json:"concepts,omitempty"`
	MaxNodes int      `json:"max_nodes,omitempty"`
	MinNodes int      `json:"min_nodes,omitempty"`
	Quota    string   `json:"quota,omitempty"`
	Seed     uint64   `json:"seed,omitempty"`
}

// LayoutKeyOpts are the layout options that change node positions.
type LayoutKeyOpts struct {
	Engine  string  `json:"engine"`
	Profile string  `json:"profile,omitempty"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Seed    uint64  `json:"seed,omitempty"`
	// Tuning holds engine parameters. It must be JSON-encodable.
	Tuning any `json:"tuning,omitempty"`
}

// Keyer builds cache keys. inputHash is the content hash of the triples a
// result was derived from.
type Keyer interface {
	GraphKey(inputHash string, opts GraphKeyOpts) string
	LayoutKey(inputHash string, graph GraphKeyOpts, opts LayoutKeyOpts) string
	RenderKey(layoutKey, format string) string
}

// DefaultKeyer hashes inputs and options into "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey returns "graph:<hash>".
func (DefaultKeyer) GraphKey(inputHash string, opts GraphKeyOpts) string {
	return hashKey("graph", inputHash, opts)
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(inputHash string, graph GraphKeyOpts, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, graph, opts)
}

// RenderKey returns "render:<hash>".
func (DefaultKeyer) RenderKey(layoutKey, format string) string {
	return hashKey("render", layoutKey, format)
}

// ScopedKeyer prefixes every key of an inner keyer, giving several
// deployments separate namespaces in one shared backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) GraphKey(inputHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(inputHash, opts)
}

func (k *ScopedKeyer) LayoutKey(inputHash string, graph GraphKeyOpts, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, graph, opts)
}

func (k *ScopedKeyer) RenderKey(layoutKey, format string) string {
	return k.prefix + k.inner.RenderKey(layoutKey, format)
}
