package caching

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// canonicalJSON renders v deterministically: object keys sorted, no
// non-determinism from Go map iteration order, so identical logical
// payloads always hash the same.
func canonicalJSON(v interface{}) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

func normalize(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]orderedPair, 0, len(keys))
		for _, k := range keys {
			nv, err := normalize(t[k])
			if err != nil {
				return nil, err
			}
			out = append(out, orderedPair{Key: k, Value: nv})
		}
		return orderedMap(out), nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			nv, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return t, nil
	}
}

type orderedPair struct {
	Key   string
	Value interface{}
}

type orderedMap []orderedPair

func (m orderedMap) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, p := range m {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// GenerateKey hashes point || canonical-JSON(input) || canonical-JSON(metadata)
// with xxhash (non-cryptographic, 64-bit), rendered as hex.
func GenerateKey(point string, input map[string]interface{}, metadata map[string]interface{}) (string, error) {
	inputJSON, err := canonicalJSON(input)
	if err != nil {
		return "", err
	}
	h := xxhash.New()
	h.WriteString(point)
	h.Write(inputJSON)
	if metadata != nil {
		metaJSON, err := canonicalJSON(metadata)
		if err != nil {
			return "", err
		}
		h.Write(metaJSON)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// EstimateSize implements the spec's JSON-representation byte estimate:
// null=4, bool=5, number=20, string=len+2, arrays/objects recursively plus
// delimiter overhead.
func EstimateSize(v interface{}) int64 {
	switch t := v.(type) {
	case nil:
		return 4
	case bool:
		return 5
	case float64, int, int64, int32:
		return 20
	case string:
		return int64(len(t)) + 2
	case []interface{}:
		var total int64 = 2 // []
		for i, e := range t {
			if i > 0 {
				total++ // ,
			}
			total += EstimateSize(e)
		}
		return total
	case map[string]interface{}:
		var total int64 = 2 // {}
		first := true
		for k, val := range t {
			if !first {
				total++ // ,
			}
			first = false
			total += int64(len(k)) + 3 // "key":
			total += EstimateSize(val)
		}
		return total
	default:
		return 20
	}
}

const entryOverheadBytes = 64

// EstimateEntrySize adds the fixed per-entry overhead to the value's
// estimated size, used when constructing cache entries for eviction math.
func EstimateEntrySize(v interface{}) int64 {
	return EstimateSize(v) + entryOverheadBytes
}
