package event

import "slices"

// Names is an event name argument: either a single name or a list.
type Names struct {
	list  []string
	multi bool
}

// One returns Names holding a single event name.
func One(name string) Names {
	return Names{list: []string{name}}
}

// Many returns Names holding a list of event names.
func Many(names ...string) Names {
	return Names{list: slices.Clone(names), multi: true}
}

// List returns the names as a slice.
func (n Names) List() []string {
	return slices.Clone(n.list)
}

// IsMultiple reports whether n was built from a list.
func (n Names) IsMultiple() bool {
	return n.multi
}

// Len returns the number of names.
func (n Names) Len() int {
	return len(n.list)
}

// ParseNames converts a dynamically typed name argument into Names.
//
// Accepted values are a string, a []string, a []any whose elements are all
// strings, or a Names. Anything else yields an *InvalidNameError. Every
// element is checked before a result is returned, so callers never act on
// a partially valid list.
func ParseNames(v any) (Names, error) {
	switch val := v.(type) {
	case string:
		return One(val), nil
	case []string:
		return Many(val...), nil
	case Names:
		return val, nil
	case []any:
		list := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return Names{}, &InvalidNameError{Value: item, Index: i}
			}
			list = append(list, s)
		}
		return Names{list: list, multi: true}, nil
	default:
		return Names{}, &InvalidNameError{Value: v, Index: -1}
	}
}
