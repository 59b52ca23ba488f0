// Package dbgname gives the kinetic engine's otherwise-opaque integer
// descriptors (IVertex/IEdge ids, PVertex/PEdge/PFace handles) human
// readable, colorized debug names, and renders a support plane's mesh to a
// PNG or OFF file when Options.Debug is set. Adapted from
// dbg/readablenames.go and triangulate/polygon_list_draw.go.
package dbgname

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	petname "github.com/dustinkirkland/golang-petname"
)

var (
	mu   sync.Mutex
	memo = map[interface{}]string{}
)

func init() {
	// Nondeterministic so nobody is tempted to treat a name as a stable
	// identifier across runs; only the underlying descriptor is stable.
	petname.NonDeterministicMode()
}

// Name returns a memoized, readable name for any comparable descriptor
// (int, string, or a struct of them). Unlike readablenames.go's version,
// which memoizes pointers and special-cases nil, descriptors here are
// plain values, so there is no nil case to special-case.
func Name(key interface{}) string {
	mu.Lock()
	defer mu.Unlock()
	if r, ok := memo[key]; ok {
		return r
	}
	r := fmt.Sprintf("%s%s", strings.Title(petname.Adjective()), strings.Title(petname.Name()))
	memo[key] = r
	return r
}

// NamePtr is the pointer-aware counterpart used for reflect-kinded values
// still carried by the planar mesh's node graph, mirroring
// readablenames.go's nil-check convention for pointer keys.
func NamePtr(obj interface{}) string {
	if obj == nil {
		return "Ø"
	}
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return "Ø"
	}
	return Name(obj)
}
