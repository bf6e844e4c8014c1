package cache

import "fmt"

// Key builds a cache key from a prefix and parameters, replacing the ad hoc
// string concatenation previously scattered at call sites.
func Key(prefix string, params ...interface{}) string {
	key := prefix
	for _, p := range params {
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}
