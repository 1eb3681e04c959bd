package nbt

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strconv"
)

var dataType = reflect.TypeOf((*Data)(nil)).Elem()

// Marshal builds a tag tree from a Go value. Structs become compounds in field
// order, using the `nbt` struct tag for names and skipping fields tagged "-".
// Maps with string keys become compounds with sorted keys. Values that already
// implement Data are used as they are.
func Marshal(v interface{}) (Data, error) {
	if v == nil {
		return nil, errors.New("nbt: cannot marshal nil")
	}
	return marshal(reflect.ValueOf(v), "")
}

func marshal(val reflect.Value, tagName string) (Data, error) {
	if val.IsValid() && val.CanInterface() && val.Type().Implements(dataType) &&
		!(val.Kind() == reflect.Interface && val.IsNil()) {
		if d, ok := val.Interface().(Data); ok && d != nil {
			return d, nil
		}
	}

	switch vk := val.Kind(); vk {
	default:
		return nil, errors.New("nbt: unknown type " + vk.String() + " whilst marshalling " + tagName)

	case reflect.Bool:
		if val.Bool() {
			return Byte(1), nil
		}
		return Byte(0), nil

	case reflect.Int8:
		return Byte(val.Int()), nil
	case reflect.Uint8:
		return Byte(int8(val.Uint())), nil

	case reflect.Int16:
		return Short(val.Int()), nil
	case reflect.Uint16:
		return Short(int16(val.Uint())), nil

	case reflect.Int32:
		return Int(val.Int()), nil
	case reflect.Int:
		if n := val.Int(); n < math.MinInt32 || n > math.MaxInt32 {
			return nil, errors.New("nbt: int " + strconv.FormatInt(n, 10) + " overflows TAG_Int whilst marshalling " + tagName)
		}
		return Int(val.Int()), nil
	case reflect.Uint32:
		return Int(int32(val.Uint())), nil

	case reflect.Int64:
		return Long(val.Int()), nil
	case reflect.Uint64:
		return Long(int64(val.Uint())), nil

	case reflect.Float32:
		return Float(val.Float()), nil
	case reflect.Float64:
		return Double(val.Float()), nil

	case reflect.String:
		return String(val.String()), nil

	case reflect.Array, reflect.Slice:
		return marshalArray(val, tagName, val.Type().Elem().Kind())

	case reflect.Struct:
		return marshalStruct(val)

	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			return nil, errors.New("nbt: unknown key type " + val.Type().String() + " for map " + tagName)
		}
		return marshalMap(val)

	case reflect.Interface, reflect.Ptr:
		if val.IsNil() {
			return nil, errors.New("nbt: nil value for " + tagName)
		}
		return marshal(val.Elem(), tagName)
	}
}

func marshalArray(val reflect.Value, tagName string, elementKind reflect.Kind) (Data, error) {
	n := val.Len()
	switch elementKind {
	case reflect.Uint8, reflect.Int8:
		arr := make(ByteArray, n)
		for i := 0; i < n; i++ {
			if elementKind == reflect.Uint8 {
				arr[i] = int8(val.Index(i).Uint())
			} else {
				arr[i] = int8(val.Index(i).Int())
			}
		}
		return arr, nil

	case reflect.Int32:
		arr := make(IntArray, n)
		for i := 0; i < n; i++ {
			arr[i] = int32(val.Index(i).Int())
		}
		return arr, nil

	case reflect.Int64:
		arr := make(LongArray, n)
		for i := 0; i < n; i++ {
			arr[i] = val.Index(i).Int()
		}
		return arr, nil
	}

	// Anything else is a list; its element kind comes from the first item, or
	// End when there are none.
	items := make([]Data, 0, n)
	for i := 0; i < n; i++ {
		item, err := marshal(val.Index(i), tagName)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	elem := TagEnd
	if len(items) > 0 {
		elem = items[0].Kind()
	}
	return NewList(elem, items...)
}

func marshalStruct(val reflect.Value) (*Compound, error) {
	c := &Compound{}
	n := val.NumField()
	for i := 0; i < n; i++ {
		f := val.Type().Field(i)
		tag := f.Tag.Get("nbt")
		if (f.PkgPath != "" && !f.Anonymous) || tag == "-" {
			continue // Private field
		}

		tagName := f.Name
		if tag != "" {
			tagName = tag
		}

		d, err := marshal(val.Field(i), tagName)
		if err != nil {
			return nil, err
		}
		c.Add(tagName, d)
	}
	return c, nil
}

func marshalMap(val reflect.Value) (*Compound, error) {
	keys := val.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	c := &Compound{}
	for _, key := range keys {
		d, err := marshal(val.MapIndex(key), key.String())
		if err != nil {
			return nil, err
		}
		c.Add(key.String(), d)
	}
	return c, nil
}
