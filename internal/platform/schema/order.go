package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// orderIndex records the rank of every declared property path in the schema,
// in declaration order. Violation ordering follows schema declaration order,
// not input field order, so repeated validation of the same record always
// reports defects in the same sequence.
//
// Paths are instance-style slash-joined segments with array positions
// normalized to "*", e.g. "/front_matter/staging/tnm" or "/plan/*/action".
type orderIndex struct {
	rank map[string]int
}

const unrankedPath = 1 << 30

// member is one key/value pair of a JSON object, order preserved.
type member struct {
	key string
	val any
}

// buildOrderIndex walks the raw schema text with a token decoder, because
// encoding/json maps discard object key order.
func buildOrderIndex(raw []byte) (*orderIndex, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	doc, err := parseOrdered(dec)
	if err != nil {
		return nil, err
	}
	root, ok := doc.([]member)
	if !ok {
		return nil, fmt.Errorf("schema root is not an object")
	}

	ix := &orderIndex{rank: make(map[string]int)}
	next := 0
	ix.walk(root, "", &next)
	return ix, nil
}

// parseOrdered reads one JSON value, representing objects as []member so key
// order survives.
func parseOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var obj []member
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string")
				}
				val, err := parseOrdered(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, member{key: key, val: val})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []any
			for dec.More() {
				val, err := parseOrdered(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return tok, nil
	}
}

// walk assigns ranks to declared properties in declaration order, descending
// into nested object schemas and array element schemas.
func (ix *orderIndex) walk(node []member, path string, next *int) {
	for _, m := range node {
		switch m.key {
		case "properties":
			props, ok := m.val.([]member)
			if !ok {
				continue
			}
			for _, p := range props {
				childPath := path + "/" + p.key
				ix.rank[childPath] = *next
				*next++
				if sub, ok := p.val.([]member); ok {
					ix.walk(sub, childPath, next)
				}
			}
		case "items":
			if sub, ok := m.val.([]member); ok {
				ix.walk(sub, path+"/*", next)
			}
		}
	}
}

// sortKey computes a comparable key for an instance location. Object segments
// map to declaration rank, array indices sort numerically within their level.
func (ix *orderIndex) sortKey(segments []string) []int {
	key := make([]int, 0, len(segments))
	normalized := ""
	for _, seg := range segments {
		if n, err := strconv.Atoi(seg); err == nil {
			normalized += "/*"
			key = append(key, n)
			continue
		}
		normalized += "/" + seg
		r, ok := ix.rank[normalized]
		if !ok {
			r = unrankedPath
		}
		key = append(key, r)
	}
	return key
}

// lessKeys compares two sort keys lexicographically.
func lessKeys(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// formatPath renders instance location segments in the dot/bracket form used
// in violation reports: "front_matter.receptors.er", "plan[0].action".
func formatPath(segments []string) string {
	if len(segments) == 0 {
		return "$"
	}
	var b strings.Builder
	for _, seg := range segments {
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(seg)
	}
	return b.String()
}
