package query

import (
	"net/url"
	"strings"
)

// BuildURL assembles a request URL from the endpoint and zero or more
// parameter sets, concatenated set by set in the order given with each
// set's own key order preserved. A key with multiple values emits one
// key=value pair per value, repeating the key.
//
// The endpoint is always suffixed with "?", even when no parameters are
// supplied; the item service treats a bare trailing "?" as an empty
// parameter list.
//
//	BuildURL("https://svc/items")                        // "https://svc/items?"
//	BuildURL("https://svc/items", p)                     // "https://svc/items?start=0&count=25"
//	// p with tags=[cool awesome] yields "...?tags=cool&tags=awesome"
func BuildURL(endpoint string, sets ...Params) string {
	var pairs []string
	for _, set := range sets {
		for _, key := range set.keys {
			for _, value := range set.values[key] {
				pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
			}
		}
	}
	return endpoint + "?" + strings.Join(pairs, "&")
}
