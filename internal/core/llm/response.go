package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/vet-records/internal/entity"
)

const (
	maxJSONDepth = 16
	maxJSONLen   = 64 << 10
)

// FindJSONObject returns the first balanced {...} span in s that decodes as a
// JSON object. The scan understands strings and escapes, and gives up on a
// candidate nested deeper than maxJSONDepth or longer than maxJSONLen.
func FindJSONObject(s string) (string, bool) {
	for from := 0; from < len(s); {
		i := strings.IndexByte(s[from:], '{')
		if i < 0 {
			return "", false
		}
		start := from + i
		if end, ok := matchBrace(s, start); ok {
			cand := s[start : end+1]
			if json.Valid([]byte(cand)) {
				return cand, true
			}
		}
		from = start + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		if i-start > maxJSONLen {
			return 0, false
		}
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
			if depth > maxJSONDepth {
				return 0, false
			}
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ParseFields recovers structured fields from model output that should contain a
// JSON object, possibly wrapped in prose. Nested objects are flattened one level
// with later keys winning; only known fields with non-empty scalar values are
// kept. Output without a usable JSON object yields an empty map.
func ParseFields(content string) entity.Fields {
	fields, _ := recoverFields(content)
	return fields
}

// recoverFields returns the kept fields and the flattened object they were
// taken from. doc is nil when content holds no usable JSON object.
func recoverFields(content string) (entity.Fields, map[string]any) {
	out := entity.Fields{}
	obj, ok := FindJSONObject(content)
	if !ok {
		return out, nil
	}

	var (
		order []string
		vals  = map[string]*string{}
		doc   = map[string]any{}
	)
	set := func(k string, raw json.RawMessage) {
		if _, seen := vals[k]; !seen {
			order = append(order, k)
		}
		vals[k] = scalarString(raw)
		doc[k] = decodeValue(raw)
	}

	err := walkObject([]byte(obj), func(key string, raw json.RawMessage) error {
		if isObject(raw) {
			return walkObject(raw, func(k string, inner json.RawMessage) error {
				set(k, inner)
				return nil
			})
		}
		set(key, raw)
		return nil
	})
	if err != nil {
		return out, nil
	}

	for _, k := range order {
		v := vals[k]
		if v == nil || !entity.IsField(k) {
			continue
		}
		if s := strings.TrimSpace(*v); s != "" {
			out[k] = s
		}
	}
	return out, doc
}

// decodeValue decodes raw keeping numbers as json.Number.
func decodeValue(raw json.RawMessage) any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// walkObject calls fn for each member of a JSON object in document order.
func walkObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("not an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("object key is not a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}

// scalarString renders strings, numbers and booleans; null, arrays and objects give nil.
func scalarString(raw json.RawMessage) *string {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return nil
	}
	var s string
	switch t[0] {
	case '"':
		if err := json.Unmarshal(t, &s); err != nil {
			return nil
		}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(t, &b); err != nil {
			return nil
		}
		s = strconv.FormatBool(b)
	case 'n', '[', '{':
		return nil
	default:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return nil
		}
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return &s
}
