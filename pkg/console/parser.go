package console

// Parser splits a line into parameters.
type Parser struct {
	// MaxParameters is the capacity of a ParameterList.
	MaxParameters int
	// MaxParameterLength is the longest token accepted, tag included.
	MaxParameterLength int
}

// withDefaults replaces unset limits by the defaults of Config.
func (p Parser) withDefaults() Parser {
	if p.MaxParameters <= 0 {
		p.MaxParameters = DefaultMaxParameters
	}
	if p.MaxParameterLength <= 0 {
		p.MaxParameterLength = DefaultBufferSize - 2
	}
	return p
}

// Parse tokenizes line on single spaces and decodes every token by its tag.
// Unset limits take the defaults of Config.
// The returned error is a *ParseError.
func (p Parser) Parse(line []byte) (*ParameterList, error) {
	p = p.withDefaults()
	if len(line) == 0 {
		return nil, &ParseError{Code: ErrNoParameter}
	}

	tokens := make([][]byte, 1, p.MaxParameters)
	for _, b := range line {
		cur := len(tokens) - 1
		if b == ' ' {
			if len(tokens) >= p.MaxParameters {
				return nil, &ParseError{Code: ErrTooManyParameters, Index: cur}
			}
			tokens = append(tokens, nil)
			continue
		}
		if len(tokens[cur]) >= p.MaxParameterLength {
			return nil, &ParseError{Code: ErrParameterTooLong, Index: cur}
		}
		tokens[cur] = append(tokens[cur], b)
	}

	list := newParameterList(p.MaxParameters)
	for n, token := range tokens {
		param, err := decodeParameter(n, token)
		if err != nil {
			return nil, err
		}
		list.params = append(list.params, param)
	}
	return list, nil
}
