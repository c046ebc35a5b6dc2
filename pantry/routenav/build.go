// pantry/routenav/build.go
package routenav

// Build returns the descriptor for navigating to viewName.
//
// When keepStateQuery is true the query starts from a copy of the source's
// current query (the state query, e.g. team=organisations/alis/products/in);
// otherwise it starts empty. update is then merged on top and wins on key
// collisions. params is passed through untouched.
//
// Build reads src once and mutates nothing. A nil src behaves like an empty
// snapshot.
func Build(src QuerySource, viewName string, params Params, keepStateQuery bool, update Query) Descriptor {
	var base Query
	if keepStateQuery && src != nil {
		base = src.CurrentQuery()
	}
	return Descriptor{
		ViewName: viewName,
		Params:   params,
		Query:    Merge(base, update),
	}
}

// Merge returns a new Query holding base with update written over it.
// Neither argument is modified and the result is never nil.
func Merge(base, update Query) Query {
	out := make(Query, len(base)+len(update))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range update {
		out[k] = v
	}
	return out
}

// Option tunes RouteToView.
type Option func(*options)

type options struct {
	params    Params
	keepState bool
	update    Query
}

// WithParams sets the route parameters.
func WithParams(p Params) Option {
	return func(o *options) { o.params = p }
}

// WithQuery merges q over the resulting query.
func WithQuery(q Query) Option {
	return func(o *options) { o.update = q }
}

// DropStateQuery starts from an empty query instead of the current one, so
// only WithQuery values end up in the descriptor.
func DropStateQuery() Option {
	return func(o *options) { o.keepState = false }
}

// RouteToView is Build with defaults: no params, state query kept, no update.
//
//	d := routenav.RouteToView(httpnav.RequestQuery(r), "dashboard",
//	    routenav.WithParams(routenav.Params{"id": 7}))
func RouteToView(src QuerySource, viewName string, opts ...Option) Descriptor {
	o := options{keepState: true}
	for _, opt := range opts {
		opt(&o)
	}
	return Build(src, viewName, o.params, o.keepState, o.update)
}
