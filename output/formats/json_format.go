package formats

import (
	"io"
	"time"

	"github.com/valyala/fastjson"

	"github.com/dataknots/knotql/knotql"
)

type JSONFormatter struct {
	buf    []byte
	arena  *fastjson.Arena
	w      io.Writer
	fields []string
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{
		buf:   make([]byte, 0, 1024),
		arena: new(fastjson.Arena),
		w:     w,
	}
}

func (t *JSONFormatter) SetHeader(fields []string) {
	t.fields = fields
}

func (t *JSONFormatter) Write(values []knotql.Value) error {
	obj := t.arena.NewObject()
	for i := range t.fields {
		obj.Set(t.fields[i], valueToJSON(t.arena, values[i]))
	}

	t.buf = obj.MarshalTo(t.buf)
	t.buf = append(t.buf, '\n')
	if _, err := t.w.Write(t.buf); err != nil {
		return err
	}
	t.buf = t.buf[:0]
	t.arena.Reset()
	return nil
}

func (t *JSONFormatter) Close() error {
	return nil
}

func valueToJSON(arena *fastjson.Arena, value knotql.Value) *fastjson.Value {
	switch value.Type.TypeID {
	case knotql.TypeIDNull:
		return arena.NewNull()
	case knotql.TypeIDInt:
		return arena.NewNumberInt(value.Int)
	case knotql.TypeIDFloat:
		return arena.NewNumberFloat64(value.Float)
	case knotql.TypeIDBoolean:
		if value.Boolean {
			return arena.NewTrue()
		}
		return arena.NewFalse()
	case knotql.TypeIDString:
		return arena.NewString(value.Str)
	case knotql.TypeIDTime:
		return arena.NewString(value.Time.Format(time.RFC3339))
	case knotql.TypeIDList:
		arr := arena.NewArray()
		for i := range value.List {
			arr.SetArrayItem(i, valueToJSON(arena, value.List[i]))
		}
		return arr
	case knotql.TypeIDStruct:
		obj := arena.NewObject()
		for i := range value.FieldValues {
			obj.Set(value.Type.Struct.Fields[i].Name, valueToJSON(arena, value.FieldValues[i]))
		}
		return obj
	}
	panic("unexhaustive type id match")
}
