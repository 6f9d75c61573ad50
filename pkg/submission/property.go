package submission

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Property is a typed HAL property (or a processor/package property).
type Property struct {
	Type  string
	Value any
}

type propertyKind int

const (
	propertyKindUnknown = propertyKind(iota)
	propertyKindBool
	propertyKindString
	propertyKindSigned
	propertyKindUnsigned
	propertyKindBigInt
	propertyKindFloat
	propertyKindList
	propertyKindDict
)

type propertyTypeInfo struct {
	Kind    propertyKind
	BitSize int
}

// propertyTypes are the type names used by the submission clients (Python
// and D-Bus wire types).
var propertyTypes = map[string]propertyTypeInfo{
	"bool":            {Kind: propertyKindBool},
	"dbus.Boolean":    {Kind: propertyKindBool},
	"str":             {Kind: propertyKindString},
	"dbus.String":     {Kind: propertyKindString},
	"dbus.UTF8String": {Kind: propertyKindString},
	"dbus.ObjectPath": {Kind: propertyKindString},
	"dbus.Byte":       {Kind: propertyKindUnsigned, BitSize: 8},
	"dbus.Int16":      {Kind: propertyKindSigned, BitSize: 16},
	"dbus.Int32":      {Kind: propertyKindSigned, BitSize: 32},
	"dbus.Int64":      {Kind: propertyKindSigned, BitSize: 64},
	"int":             {Kind: propertyKindSigned, BitSize: 64},
	"dbus.UInt16":     {Kind: propertyKindUnsigned, BitSize: 16},
	"dbus.UInt32":     {Kind: propertyKindUnsigned, BitSize: 32},
	"dbus.UInt64":     {Kind: propertyKindUnsigned, BitSize: 64},
	"uint64":          {Kind: propertyKindUnsigned, BitSize: 64},
	"long":            {Kind: propertyKindBigInt},
	"float":           {Kind: propertyKindFloat},
	"double":          {Kind: propertyKindFloat},
	"dbus.Double":     {Kind: propertyKindFloat},
	"list":            {Kind: propertyKindList},
	"tuple":           {Kind: propertyKindList},
	"dbus.Array":      {Kind: propertyKindList},
	"dict":            {Kind: propertyKindDict},
	"dbus.Dictionary": {Kind: propertyKindDict},
}

// parseBool parses the Python literals used by the submission clients.
func parseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "True":
		return true, nil
	case "False":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value '%s', expected 'True' or 'False'", s)
}

// parsePropertyValue converts the content of a <property> or <value>
// element to a Go value according to its "type" attribute.
func parsePropertyValue(el *element) (any, error) {
	typeName := el.Attrs["type"]
	info, ok := propertyTypes[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown property type '%s'", typeName)
	}

	switch info.Kind {
	case propertyKindList, propertyKindDict:
	default:
		if len(el.Children) != 0 {
			return nil, fmt.Errorf("property of type '%s' must not have child elements", typeName)
		}
	}

	text := strings.TrimSpace(el.Text)
	switch info.Kind {
	case propertyKindBool:
		return parseBool(text)
	case propertyKindString:
		return el.Text, nil
	case propertyKindSigned:
		v, err := strconv.ParseInt(text, 10, info.BitSize)
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s' of type '%s': %w", text, typeName, err)
		}
		return v, nil
	case propertyKindUnsigned:
		v, err := strconv.ParseUint(text, 10, info.BitSize)
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s' of type '%s': %w", text, typeName, err)
		}
		return v, nil
	case propertyKindBigInt:
		v, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, fmt.Errorf("invalid value '%s' of type '%s'", text, typeName)
		}
		return v, nil
	case propertyKindFloat:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s' of type '%s': %w", text, typeName, err)
		}
		return v, nil
	case propertyKindList:
		result := make([]any, 0, len(el.Children))
		for _, child := range el.Children {
			if child.Name != "value" {
				return nil, fmt.Errorf("unexpected element <%s> in a list", child.Name)
			}
			if _, ok := child.attr("name"); ok {
				return nil, fmt.Errorf("list items must not have a name")
			}
			v, err := parsePropertyValue(child)
			if err != nil {
				return nil, err
			}
			result = append(result, v)
		}
		return result, nil
	case propertyKindDict:
		result := make(map[string]any, len(el.Children))
		for _, child := range el.Children {
			if child.Name != "value" {
				return nil, fmt.Errorf("unexpected element <%s> in a dictionary", child.Name)
			}
			name, ok := child.attr("name")
			if !ok {
				return nil, fmt.Errorf("dictionary items must have a name")
			}
			v, err := parsePropertyValue(child)
			if err != nil {
				return nil, err
			}
			result[name] = v
		}
		return result, nil
	}
	panic(fmt.Sprintf("unexpected property kind %d", info.Kind))
}

// asInt converts integer property values to int. Strings are parsed
// as hexadecimal numbers.
func asInt(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int(v), true
	case *big.Int:
		if !v.IsInt64() {
			return 0, false
		}
		return int(v.Int64()), true
	case string:
		i, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(v), "0x"), 16, 64)
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// asString returns the value if it is a string.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
