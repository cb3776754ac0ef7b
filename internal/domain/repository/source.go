package repository

// SourceKind names the variant chosen by the data source selector.
type SourceKind string

const (
	SourceLive     SourceKind = "live"
	SourceFallback SourceKind = "fallback"
)

// Source is the two-variant outcome of source selection: Live carries the
// durable store, Fallback carries nothing and routes every lookup to the
// static dataset. The zero value is Fallback.
type Source struct {
	durable AdvisoryStore
}

// LiveSource selects the durable store.
func LiveSource(store AdvisoryStore) Source {
	return Source{durable: store}
}

// FallbackSource selects the static dataset only.
func FallbackSource() Source {
	return Source{}
}

// Kind returns the selected variant.
func (s Source) Kind() SourceKind {
	if s.durable != nil {
		return SourceLive
	}
	return SourceFallback
}

// Durable returns the durable store when the source is Live.
func (s Source) Durable() (AdvisoryStore, bool) {
	return s.durable, s.durable != nil
}
