package driven

// CacheInvalidator is implemented by caching decorators around a DatasetSource.
type CacheInvalidator interface {
	// Invalidate drops every cached listing.
	Invalidate()
}
