package codec

import (
	"strconv"

	"github.com/jpakfmt/jpak/value"
)

// maxSafeInteger is the largest integer a float64 (and so a JSON number,
// and a JS number) represents exactly. A 64-bit value outside
// [-maxSafeInteger, maxSafeInteger] loses precision if handed to a JSON
// encoder as a number, so toJSONShape renders it as a decimal string
// instead.
const maxSafeInteger = 1<<53 - 1

// toJSONShape rewrites a decoded value graph into something a JSON
// encoder can consume directly: the extension kinds and KeyRef/Undefined
// have no JSON equivalent, so each is mapped onto the nearest JSON-native
// shape, and wide integers are demoted to decimal strings when enforced
// or when they fall outside the float64-safe range. The rewrite is
// recursive and always returns a new Value; it never mutates its
// argument in place.
func toJSONShape(v value.Value, enforceBigInt bool) value.Value {
	switch v.Kind {
	case value.KindUndefined:
		return value.Str("undefined")

	case value.KindKeyRef:
		return value.Str(v.Str)

	case value.KindInt:
		if enforceBigInt || v.Int < -maxSafeInteger || v.Int > maxSafeInteger {
			return value.Str(strconv.FormatInt(v.Int, 10))
		}
		return v

	case value.KindUint:
		if enforceBigInt || v.Uint > maxSafeInteger {
			return value.Str(strconv.FormatUint(v.Uint, 10))
		}
		return v

	case value.KindArray:
		items := make([]value.Value, len(v.Array))
		for i, item := range v.Array {
			items[i] = toJSONShape(item, enforceBigInt)
		}
		return value.Array(items...)

	case value.KindObject:
		pairs := make([]value.Pair, len(v.Pairs))
		for i, p := range v.Pairs {
			pairs[i] = value.Pair{Key: toJSONShape(p.Key, enforceBigInt), Val: toJSONShape(p.Val, enforceBigInt)}
		}
		return value.Object(pairs...)

	case value.KindMap:
		items := make([]value.Value, len(v.Pairs))
		for i, p := range v.Pairs {
			items[i] = value.Array(toJSONShape(p.Key, enforceBigInt), toJSONShape(p.Val, enforceBigInt))
		}
		return value.Array(items...)

	case value.KindSet:
		items := make([]value.Value, len(v.Array))
		for i, item := range v.Array {
			items[i] = toJSONShape(item, enforceBigInt)
		}
		return value.Array(items...)

	case value.KindSymbol:
		return value.Object(
			value.ObjectPair("symbolGlobal", value.Bool(v.Symbol.Global)),
			value.ObjectPair("symbolKey", value.Str(v.Symbol.Description)),
		)

	case value.KindRegExp:
		return value.Object(
			value.ObjectPair("regexSrc", value.Str(v.RegExp.Pattern)),
			value.ObjectPair("regexFlags", value.Str(v.RegExp.Flags)),
		)

	default:
		return v
	}
}
