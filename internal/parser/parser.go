package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package
	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/mcncl/jsonmerge/internal/models"
)

// Parse reads exactly one JSON value from reader. Object keys keep the order
// in which they appear in the input.
func Parse(reader io.Reader) (models.Value, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Numbers keep their literal text

	token, err := decoder.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, wrapDecodeError(err)
	}

	root, err := parseToken(decoder, token)
	if err != nil {
		return nil, wrapDecodeError(err)
	}

	// Anything other than EOF after the first value is either garbage or a
	// second document.
	if _, err := decoder.Token(); err == nil {
		return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError("invalid trailing data after first JSON value", err)
	}

	return root, nil
}

func parseToken(decoder *json.Decoder, token json.Token) (models.Value, error) {
	switch t := token.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(decoder)
		case '[':
			return parseArray(decoder)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case nil:
		return models.Null{}, nil
	case bool:
		return models.Bool(t), nil
	case json.Number:
		return models.Number(t), nil
	case string:
		return models.String(t), nil
	default:
		return nil, fmt.Errorf("unexpected token %v (%T)", t, t)
	}
}

func parseObject(decoder *json.Decoder) (models.Value, error) {
	obj := models.NewObject()
	for {
		token, err := nextToken(decoder)
		if err != nil {
			return nil, err
		}
		if delim, ok := token.(json.Delim); ok && delim == '}' {
			return obj, nil
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", token)
		}

		token, err = nextToken(decoder)
		if err != nil {
			return nil, err
		}
		value, err := parseToken(decoder, token)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
}

func parseArray(decoder *json.Decoder) (models.Value, error) {
	arr := models.Array{}
	for {
		token, err := nextToken(decoder)
		if err != nil {
			return nil, err
		}
		if delim, ok := token.(json.Delim); ok && delim == ']' {
			return arr, nil
		}
		value, err := parseToken(decoder, token)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
}

// nextToken reads a token inside an open container, where EOF means the
// document was cut short.
func nextToken(decoder *json.Decoder) (json.Token, error) {
	token, err := decoder.Token()
	if stderrors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return token, err
}

func wrapDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxError.Offset, syntaxError.Error()),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("JSON syntax error: unexpected EOF", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Value, error) {
	// An empty reader gives io.EOF, but whitespace-only input is reported the
	// same way so callers see one message.
	if strings.TrimSpace(jsonString) == "" {
		return nil, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Value, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data))
}

// ReadFile reads a JSON document from disk with the same checks ParseFile
// applies, without parsing it.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}
