package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Characteristic is a single technical characteristic row.
type Characteristic struct {
	Key   string
	Value string
}

// Characteristics is a string to string mapping that keeps the order in which keys
// appeared in the source document so tables render the same way on every request.
type Characteristics []Characteristic

// Set adds key or replaces its value in place.
func (c *Characteristics) Set(key, value string) {
	for i := range *c {
		if (*c)[i].Key == key {
			(*c)[i].Value = value
			return
		}
	}
	*c = append(*c, Characteristic{Key: key, Value: value})
}

func (c Characteristics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(kv.Key)
		if err != nil {
			return nil, err
		}
		value, err := marshalNoEscape(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Characteristics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("technical characteristics: expected object, got %v", tok)
	}

	out := Characteristics{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("technical characteristics: unexpected key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("technical characteristics %q: %w", key, err)
		}
		out.Set(key, scalarString(raw))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}

// scalarString renders a JSON value as display text: strings unquoted, null empty,
// anything else in its literal JSON form.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	return string(trimmed)
}

func marshalNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
