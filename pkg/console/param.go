package console

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the decode rule selected by a parameter tag.
type Kind int

// Parameter kinds.
const (
	KindInvalid Kind = iota
	KindSelector
	KindUnsigned
	KindSigned
	KindFloat
	KindFalse
	KindTrue
	KindText
)

var kindNames = [...]string{"invalid", "selector", "unsigned", "signed", "float", "false", "true", "text"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// KindOf maps a tag byte to its Kind. Tags are case insensitive.
func KindOf(tag byte) Kind {
	switch tag {
	case 'S', 's':
		return KindSelector
	case 'U', 'u':
		return KindUnsigned
	case 'I', 'i':
		return KindSigned
	case 'F', 'f':
		return KindFloat
	case 'L', 'l':
		return KindFalse
	case 'H', 'h':
		return KindTrue
	case 'T', 't':
		return KindText
	}
	return KindInvalid
}

// Parameter is one decoded token of a command line.
type Parameter struct {
	// Tag is the tag byte as received.
	Tag byte
	// Text is the token without its tag.
	Text string
	Kind Kind

	// bits holds the uint32, int32 or float32 value, depending on Kind.
	bits uint32
}

// Uint returns the value of a selector, unsigned or boolean parameter.
func (p Parameter) Uint() uint32 {
	return p.bits
}

// Int returns the value of a signed parameter.
func (p Parameter) Int() int32 {
	return int32(p.bits)
}

// Float returns the value of a float parameter.
func (p Parameter) Float() float32 {
	return math.Float32frombits(p.bits)
}

// Bool returns the value of a boolean parameter.
func (p Parameter) Bool() bool {
	return p.bits != 0
}

// Value returns the decoded value as uint32, int32, float32, bool or string.
func (p Parameter) Value() interface{} {
	switch p.Kind {
	case KindSelector, KindUnsigned:
		return p.Uint()
	case KindSigned:
		return p.Int()
	case KindFloat:
		return p.Float()
	case KindFalse, KindTrue:
		return p.Bool()
	}
	return p.Text
}

func (p Parameter) String() string {
	return fmt.Sprintf("%c%s", p.Tag, p.Text)
}

// decodeParameter decodes a token (tag included) found at index.
func decodeParameter(index int, token []byte) (p Parameter, err error) {
	fail := &ParseError{Code: ErrInvalidParameterType, Index: index}
	if len(token) == 0 {
		return p, fail
	}
	p.Tag, p.Text, p.Kind = token[0], string(token[1:]), KindOf(token[0])
	if p.Kind == KindSelector && index != 0 {
		return p, fail
	}
	switch p.Kind {
	case KindSelector, KindUnsigned:
		val, err := strconv.ParseUint(p.Text, 10, 32)
		if err != nil {
			return p, fail
		}
		p.bits = uint32(val)
	case KindSigned:
		val, err := strconv.ParseInt(p.Text, 10, 32)
		if err != nil {
			return p, fail
		}
		p.bits = uint32(int32(val))
	case KindFloat:
		val, err := strconv.ParseFloat(p.Text, 32)
		if err != nil {
			return p, fail
		}
		p.bits = math.Float32bits(float32(val))
	case KindFalse:
		p.bits = 0
	case KindTrue:
		p.bits = 0xFFFFFFFF
	case KindText:
	default:
		return p, fail
	}
	return p, nil
}

// ParameterList is the ordered result of parsing one line.
type ParameterList struct {
	params []Parameter
}

func newParameterList(capacity int) *ParameterList {
	return &ParameterList{params: make([]Parameter, 0, capacity)}
}

// NewParameterList builds a list from already decoded parameters.
func NewParameterList(params ...Parameter) *ParameterList {
	return &ParameterList{params: params}
}

// Len returns the number of parameters.
func (l *ParameterList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.params)
}

// At returns the parameter at index i. Out of range yields an invalid
// parameter rather than a panic.
func (l *ParameterList) At(i int) Parameter {
	if i < 0 || i >= l.Len() {
		return Parameter{}
	}
	return l.params[i]
}

// Selector returns the selector value when parameter 0 is a selector.
func (l *ParameterList) Selector() (uint32, bool) {
	if p := l.At(0); p.Kind == KindSelector {
		return p.Uint(), true
	}
	return 0, false
}

// Params returns a copy of the parameters.
func (l *ParameterList) Params() []Parameter {
	if l == nil {
		return nil
	}
	return append([]Parameter(nil), l.params...)
}
