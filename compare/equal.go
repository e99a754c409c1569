package compare

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
)

// Equal reports whether two decoded JSON documents are the same. Objects are compared without
// regard to key order, arrays element by element, and numbers by their exact value, so 1, 1.0
// and 1e0 are equal but 9007199254740993 and 9007199254740992 are not.
func Equal(a, b any) bool {
	if ra, ok := number(a); ok {
		rb, ok := number(b)
		return ok && ra.Cmp(rb) == 0
	}
	switch va := a.(type) {
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for k, x := range va {
			y, ok := vb[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true
	case []any:
		vb, ok := b.([]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !Equal(va[i], vb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// number returns the exact value of a JSON number, whether it was decoded as json.Number or
// built as a Go number.
func number(v any) (*big.Rat, bool) {
	var s string
	switch n := v.(type) {
	case json.Number:
		s = n.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		s = fmt.Sprint(n)
	case float32, float64:
		r := new(big.Rat).SetFloat64(reflect.ValueOf(n).Float())
		return r, r != nil
	default:
		return nil, false
	}
	r, ok := new(big.Rat).SetString(s)
	return r, ok
}
