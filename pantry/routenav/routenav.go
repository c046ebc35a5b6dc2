// pantry/routenav/routenav.go
package routenav

import "errors"

// ErrEmptyViewName is returned by Descriptor.Validate when no view is named.
var ErrEmptyViewName = errors.New("routenav: empty view name")

// Params holds route parameters. A nil Params means "no parameters".
type Params map[string]any

// Query holds query parameters, one value per key.
type Query map[string]string

// Clone returns a copy of q. The copy is never nil.
func (q Query) Clone() Query {
	out := make(Query, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// QuerySource exposes the query of the route currently being served.
// Implementations are read-only from the builder's point of view.
type QuerySource interface {
	CurrentQuery() Query
}

// StaticQuery is a fixed snapshot usable as a QuerySource.
type StaticQuery Query

// CurrentQuery implements QuerySource.
func (s StaticQuery) CurrentQuery() Query {
	return Query(s)
}

// Descriptor describes a requested view transition. It is handed to a router
// (see router.Registry.Push) which performs the navigation.
type Descriptor struct {
	ViewName string `json:"view"`
	Params   Params `json:"params"`
	Query    Query  `json:"query"`
}

// Validate reports whether d names a view. Build never calls it; consumers
// that want a strict contract do.
func (d Descriptor) Validate() error {
	if d.ViewName == "" {
		return ErrEmptyViewName
	}
	return nil
}
