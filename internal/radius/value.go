package radius

import (
	"fmt"

	"github.com/wichert/goradius/internal/radcodec"
	"github.com/wichert/goradius/internal/raddict"
)

// encodeValue turns an application-level value into the scalar octet
// encoding for def's type. Integer-family types additionally accept a
// string naming an enumerated VALUE, resolved through dict.
func encodeValue(dict *raddict.Dictionary, def *raddict.AttrDef, value any) ([]byte, error) {
	if name, ok := value.(string); ok {
		if n, ok := dict.LookupValueInt(def.Name, name); ok {
			value = n
		}
	}

	switch def.Type {
	case radcodec.TypeString:
		s, err := asString(def, value)
		if err != nil {
			return nil, err
		}
		raw, err := radcodec.EncodeString(s)
		if err != nil {
			return nil, wrapEncodeErr(def, err)
		}
		return raw, nil
	case radcodec.TypeOctets:
		var raw []byte
		var err error
		switch v := value.(type) {
		case []byte:
			raw, err = radcodec.EncodeOctets(v)
		case string:
			raw, err = radcodec.EncodeOctets([]byte(v))
		default:
			return nil, fmt.Errorf("encode %s: %w: want string or []byte, got %T", def.Name, ErrEncoding, value)
		}
		if err != nil {
			return nil, wrapEncodeErr(def, err)
		}
		return raw, nil
	case radcodec.TypeInteger:
		v, err := asUint32(def, value)
		if err != nil {
			return nil, err
		}
		return radcodec.EncodeInteger(v), nil
	case radcodec.TypeSigned:
		v, err := asInt64(def, value)
		if err != nil {
			return nil, err
		}
		return radcodec.EncodeSigned(int32(v)), nil
	case radcodec.TypeShort:
		v, err := asInt64(def, value)
		if err != nil {
			return nil, err
		}
		return radcodec.EncodeShort(uint16(v)), nil
	case radcodec.TypeByte:
		v, err := asInt64(def, value)
		if err != nil {
			return nil, err
		}
		return radcodec.EncodeByte(uint8(v)), nil
	case radcodec.TypeInteger64:
		v, err := asUint64(def, value)
		if err != nil {
			return nil, err
		}
		return radcodec.EncodeInteger64(v), nil
	case radcodec.TypeDate:
		v, err := asUint32(def, value)
		if err != nil {
			return nil, err
		}
		return radcodec.EncodeDate(v), nil
	case radcodec.TypeIPAddr:
		s, err := asString(def, value)
		if err != nil {
			return nil, err
		}
		raw, err := radcodec.EncodeIPAddr(s)
		if err != nil {
			return nil, wrapEncodeErr(def, err)
		}
		return raw, nil
	case radcodec.TypeIPv6Addr:
		s, err := asString(def, value)
		if err != nil {
			return nil, err
		}
		raw, err := radcodec.EncodeIPv6Addr(s)
		if err != nil {
			return nil, wrapEncodeErr(def, err)
		}
		return raw, nil
	case radcodec.TypeIPv6Prefix:
		s, err := asString(def, value)
		if err != nil {
			return nil, err
		}
		raw, err := radcodec.EncodeIPv6Prefix(s)
		if err != nil {
			return nil, wrapEncodeErr(def, err)
		}
		return raw, nil
	case radcodec.TypeAbinary:
		s, err := asString(def, value)
		if err != nil {
			return nil, err
		}
		raw, err := radcodec.EncodeAbinary(s)
		if err != nil {
			return nil, wrapEncodeErr(def, err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("encode %s: %w: unknown type %s", def.Name, ErrEncoding, def.Type)
	}
}

// wrapEncodeErr folds a radcodec-level encode error into the package's
// ErrEncoding sentinel, so callers match a single stable error with
// errors.Is instead of the codec's own internal sentinels.
func wrapEncodeErr(def *raddict.AttrDef, err error) error {
	return fmt.Errorf("encode %s: %w: %w", def.Name, ErrEncoding, err)
}

// decodeValue turns the wire octets for def back into an application
// value: the symbolic VALUE name if one is registered for integer-family
// types, otherwise the natively typed scalar.
func decodeValue(dict *raddict.Dictionary, def *raddict.AttrDef, raw []byte) (any, error) {
	switch def.Type {
	case radcodec.TypeString:
		s, err := radcodec.DecodeString(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		return s, nil
	case radcodec.TypeOctets:
		b, err := radcodec.DecodeOctets(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		return b, nil
	case radcodec.TypeInteger:
		v, err := radcodec.DecodeInteger(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		if name, ok := dict.LookupValueName(def.Name, int(v)); ok {
			return name, nil
		}
		return v, nil
	case radcodec.TypeSigned:
		v, err := radcodec.DecodeSigned(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		if name, ok := dict.LookupValueName(def.Name, int(v)); ok {
			return name, nil
		}
		return v, nil
	case radcodec.TypeShort:
		v, err := radcodec.DecodeShort(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		if name, ok := dict.LookupValueName(def.Name, int(v)); ok {
			return name, nil
		}
		return v, nil
	case radcodec.TypeByte:
		v, err := radcodec.DecodeByte(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		if name, ok := dict.LookupValueName(def.Name, int(v)); ok {
			return name, nil
		}
		return v, nil
	case radcodec.TypeInteger64:
		v, err := radcodec.DecodeInteger64(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		return v, nil
	case radcodec.TypeDate:
		v, err := radcodec.DecodeDate(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		return v, nil
	case radcodec.TypeIPAddr:
		s, err := radcodec.DecodeIPAddr(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		return s, nil
	case radcodec.TypeIPv6Addr:
		s, err := radcodec.DecodeIPv6Addr(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		return s, nil
	case radcodec.TypeIPv6Prefix:
		s, err := radcodec.DecodeIPv6Prefix(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		return s, nil
	case radcodec.TypeAbinary:
		s, err := radcodec.DecodeAbinary(raw)
		if err != nil {
			return nil, wrapDecodeErr(def, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("decode %s: %w: unknown type %s", def.Name, ErrEncoding, def.Type)
	}
}

// wrapDecodeErr folds a radcodec-level decode error into the package's
// ErrDecode sentinel, matching wrapEncodeErr's treatment on the encode side.
func wrapDecodeErr(def *raddict.AttrDef, err error) error {
	return fmt.Errorf("decode %s: %w: %w", def.Name, ErrDecode, err)
}

func asString(def *raddict.AttrDef, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("encode %s: %w: want string, got %T", def.Name, ErrEncoding, value)
	}
}

func asUint32(def *raddict.AttrDef, value any) (uint32, error) {
	v, err := asInt64(def, value)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func asUint64(def *raddict.AttrDef, value any) (uint64, error) {
	v, err := asInt64(def, value)
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

func asInt64(def *raddict.AttrDef, value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("encode %s: %w: want an integer or VALUE name, got %T", def.Name, ErrEncoding, value)
	}
}
