package monitor

import (
	"bytes"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	structpb "github.com/golang/protobuf/ptypes/struct"
	tspb "github.com/golang/protobuf/ptypes/timestamp"

	"github.com/robotalks/dbgcon/pkg/console"
)

// Record is a decoded console event.
type Record struct {
	Time   time.Time
	Kind   string
	Menu   int
	From   int
	Title  string
	Code   int
	Params []Param
}

// Param is a decoded command parameter. Value is a float64 for numeric
// kinds, a bool or a string.
type Param struct {
	Tag   string
	Kind  string
	Value interface{}
}

// Encode serializes ev, which happened at t, as a protobuf Struct.
func Encode(ev console.Event, t time.Time) ([]byte, error) {
	ts, err := ptypes.TimestampProto(t)
	if err != nil {
		return nil, err
	}
	fields := map[string]*structpb.Value{
		"time": structValue(map[string]*structpb.Value{
			"seconds": numberValue(float64(ts.Seconds)),
			"nanos":   numberValue(float64(ts.Nanos)),
		}),
		"kind":  stringValue(ev.Kind.String()),
		"menu":  numberValue(float64(ev.Menu)),
		"title": stringValue(ev.Title),
	}
	switch ev.Kind {
	case console.EventCommand:
		params := ev.Params.Params()
		values := make([]*structpb.Value, 0, len(params))
		for _, p := range params {
			values = append(values, structValue(map[string]*structpb.Value{
				"tag":   stringValue(string(p.Tag)),
				"kind":  stringValue(p.Kind.String()),
				"value": paramValue(p),
			}))
		}
		fields["params"] = &structpb.Value{Kind: &structpb.Value_ListValue{
			ListValue: &structpb.ListValue{Values: values},
		}}
	case console.EventError:
		fields["code"] = numberValue(float64(ev.Code))
	case console.EventMenuChanged, console.EventReset:
		fields["from"] = numberValue(float64(ev.From))
	}
	return proto.Marshal(&structpb.Struct{Fields: fields})
}

// Decode parses an encoded event.
func Decode(data []byte) (*Record, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	kind := msg.Fields["kind"].GetStringValue()
	if kind == "" {
		return nil, fmt.Errorf("not a console event")
	}
	r := &Record{
		Kind:  kind,
		Menu:  int(msg.Fields["menu"].GetNumberValue()),
		From:  int(msg.Fields["from"].GetNumberValue()),
		Title: msg.Fields["title"].GetStringValue(),
		Code:  int(msg.Fields["code"].GetNumberValue()),
	}
	if tv := msg.Fields["time"].GetStructValue(); tv != nil {
		t, err := ptypes.Timestamp(&tspb.Timestamp{
			Seconds: int64(tv.Fields["seconds"].GetNumberValue()),
			Nanos:   int32(tv.Fields["nanos"].GetNumberValue()),
		})
		if err != nil {
			return nil, err
		}
		r.Time = t
	}
	for _, v := range msg.Fields["params"].GetListValue().GetValues() {
		pv := v.GetStructValue()
		if pv == nil {
			continue
		}
		p := Param{
			Tag:  pv.Fields["tag"].GetStringValue(),
			Kind: pv.Fields["kind"].GetStringValue(),
		}
		switch val := pv.Fields["value"].GetKind().(type) {
		case *structpb.Value_NumberValue:
			p.Value = val.NumberValue
		case *structpb.Value_BoolValue:
			p.Value = val.BoolValue
		case *structpb.Value_StringValue:
			p.Value = val.StringValue
		}
		r.Params = append(r.Params, p)
	}
	return r, nil
}

func (r *Record) String() string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s [%s]", r.Kind, r.Title)
	switch r.Kind {
	case console.EventCommand.String():
		for _, p := range r.Params {
			fmt.Fprintf(&w, " %s%v", p.Tag, p.Value)
		}
	case console.EventError.String():
		fmt.Fprintf(&w, " %v", console.ErrorCode(r.Code))
	case console.EventMenuChanged.String():
		fmt.Fprintf(&w, " %d -> %d", r.From, r.Menu)
	}
	return w.String()
}

func paramValue(p console.Parameter) *structpb.Value {
	switch v := p.Value().(type) {
	case uint32:
		return numberValue(float64(v))
	case int32:
		return numberValue(float64(v))
	case float32:
		return numberValue(float64(v))
	case bool:
		return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v}}
	}
	return stringValue(p.Text)
}

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func structValue(fields map[string]*structpb.Value) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StructValue{
		StructValue: &structpb.Struct{Fields: fields},
	}}
}
