package sqlstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Kind identifica el tipo que contiene un Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindObject
	KindList
)

// Value es un escalar tipado (o un objeto/lista anidado) tal y como sale
// del almacén. El valor cero es Null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	obj  *Row
	list []Value
}

func Null() Value              { return Value{} }
func String(s string) Value    { return Value{kind: KindString, s: s} }
func Int(i int64) Value        { return Value{kind: KindInt, i: i} }
func Float(f float64) Value    { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func List(items []Value) Value { return Value{kind: KindList, list: items} }

// Object envuelve una fila; una fila nil equivale a Null.
func Object(r *Row) Value {
	if r == nil {
		return Null()
	}
	return Value{kind: KindObject, obj: r}
}

// Strings construye una lista de cadenas.
func Strings(items []string) Value {
	out := make([]Value, 0, len(items))
	for _, s := range items {
		out = append(out, String(s))
	}
	return List(out)
}

// Objects construye una lista de objetos. Nunca devuelve una lista nula.
func Objects(rows []*Row) Value {
	out := make([]Value, 0, len(rows))
	for _, r := range rows {
		out = append(out, Object(r))
	}
	return List(out)
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsObject() (*Row, bool)   { return v.obj, v.kind == KindObject }
func (v Value) AsList() ([]Value, bool)  { return v.list, v.kind == KindList }

// AsInt acepta también floats enteros y cadenas numéricas.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == math.Trunc(v.f) {
			return int64(v.f), true
		}
	case KindString:
		if i, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Raw devuelve el valor Go subyacente, apto para usarse como argumento SQL.
func (v Value) Raw() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindObject:
		return v.obj
	case KindList:
		return v.list
	}
	return nil
}

// Key normaliza escalares a una clave comparable entre tablas: el 7 entero
// y el "7" textual producen la misma clave.
func (v Value) Key() (string, bool) {
	switch v.kind {
	case KindString:
		return v.s, true
	case KindInt:
		return strconv.FormatInt(v.i, 10), true
	case KindFloat:
		if v.f == math.Trunc(v.f) {
			return strconv.FormatInt(int64(v.f), 10), true
		}
		return strconv.FormatFloat(v.f, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	}
	return "", false
}

func (v Value) String() string {
	if k, ok := v.Key(); ok {
		return k
	}
	b, _ := v.MarshalJSON()
	return string(b)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		return json.Marshal(v.f)
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindObject:
		return v.obj.MarshalJSON()
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// ---------------- Row ----------------

// Row es un mapa columna -> valor que conserva el orden de las columnas.
type Row struct {
	keys []string
	vals map[string]Value
}

func NewRow(capacity int) *Row {
	return &Row{keys: make([]string, 0, capacity), vals: make(map[string]Value, capacity)}
}

// Set añade la columna al final o sustituye su valor si ya existe.
func (r *Row) Set(key string, v Value) {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

func (r *Row) Get(key string) (Value, bool) {
	if r == nil {
		return Null(), false
	}
	v, ok := r.vals[key]
	return v, ok
}

func (r *Row) Delete(key string) {
	if _, ok := r.vals[key]; !ok {
		return
	}
	delete(r.vals, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Columns devuelve una copia de las columnas en orden.
func (r *Row) Columns() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Clone copia la fila en profundidad; los objetos anidados también se copian.
func (r *Row) Clone() *Row {
	if r == nil {
		return nil
	}
	out := NewRow(len(r.keys))
	for _, k := range r.keys {
		out.Set(k, r.vals[k].clone())
	}
	return out
}

func (v Value) clone() Value {
	switch v.kind {
	case KindObject:
		return Object(v.obj.Clone())
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.clone()
		}
		return List(items)
	}
	return v
}

func (r *Row) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.vals[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Row) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	switch v.kind {
	case KindNull:
		*r = *NewRow(0)
	case KindObject:
		*r = *v.obj
	default:
		return errors.New("row: expected JSON object")
	}
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Null(), io.ErrUnexpectedEOF
		}
		return Null(), err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Null(), err
		}
		return Float(f), nil
	case json.Delim:
		switch t {
		case '{':
			row := NewRow(4)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null(), fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Null(), err
				}
				row.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return Object(row), nil
		case '[':
			items := make([]Value, 0)
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Null(), err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return List(items), nil
		}
	}
	return Null(), fmt.Errorf("unexpected JSON token %v", tok)
}
