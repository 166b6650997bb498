package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SourceCodes lists the input diagnosis codes that mapped to a condition. The engine
// emits them as a set, which may arrive as a JSON array or a single string.
type SourceCodes []string

// UnmarshalJSON accepts either a string or an array of strings
func (s *SourceCodes) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = SourceCodes{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("source codes must be a string or a list of strings: %w", err)
	}
	*s = many
	return nil
}

// UnmarshalJSON decodes the engine's interaction object, keeping key order
func (f *InteractionFlags) UnmarshalJSON(data []byte) error {
	flags := InteractionFlags{}
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		flag, err := parseFlag(raw)
		if err != nil {
			return fmt.Errorf("interaction %q: %w", key, err)
		}
		flags = append(flags, InteractionFlag{Code: key, Flag: flag})
		return nil
	})
	if err != nil {
		return err
	}
	*f = flags
	return nil
}

// MarshalJSON encodes the flags as a JSON object in their original order
func (f InteractionFlags) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, flag := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, flag.Code, flag.Flag); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the engine's demographic record, keeping field order
func (d *Demographics) UnmarshalJSON(data []byte) error {
	var fields []DemographicField
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var value interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("demographic field %q: %w", key, err)
		}
		fields = append(fields, DemographicField{Name: key, Value: value})
		return nil
	})
	if err != nil {
		return err
	}
	*d = NewDemographics(fields)
	return nil
}

// MarshalJSON encodes the record as a JSON object. Records built without Fields
// are encoded from their typed members.
func (d Demographics) MarshalJSON() ([]byte, error) {
	fields := d.OrderedFields()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, field.Name, field.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value interface{}) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// decodeOrderedObject walks a JSON object member by member. A JSON null is treated
// as an empty object.
func decodeOrderedObject(data []byte, visit func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		if err := visit(key, raw); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}

func parseFlag(raw json.RawMessage) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		// Any nonzero value triggers the term, fractions included
		if i := int(n); i != 0 {
			return i, nil
		}
		return 1, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported flag value %s", string(raw))
	}
}
