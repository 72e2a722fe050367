// Package scope narrows a document to the sub-document at a path and writes
// a replacement back in place.
package scope

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/mcncl/jsonmerge/internal/path"
)

// Extract returns the raw JSON found at scope, written as a rendered path
// such as "data.items[0]". An empty scope returns doc.
func Extract(doc []byte, scope string) ([]byte, error) {
	if scope == "" {
		return doc, nil
	}

	query, err := Query(scope)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(doc, query)
	if !result.Exists() {
		return nil, errors.NewInputError(fmt.Sprintf("scope '%s' not found", scope), errors.ErrScopeNotFound)
	}
	return []byte(result.Raw), nil
}

// Splice returns doc with the value at scope replaced by sub. The rest of
// doc is left byte for byte as it was. An empty scope returns sub.
func Splice(doc, sub []byte, scope string) ([]byte, error) {
	if scope == "" {
		return sub, nil
	}

	query, err := Query(scope)
	if err != nil {
		return nil, err
	}

	result, err := sjson.SetRawBytes(doc, query, sub)
	if err != nil {
		return nil, errors.NewOutputError(fmt.Sprintf("failed to write scope '%s'", scope), err)
	}
	return result, nil
}

// Query converts a rendered path into gjson/sjson path syntax.
func Query(scope string) (string, error) {
	p, err := path.Parse(scope)
	if err != nil {
		return "", errors.NewInputError(fmt.Sprintf("invalid scope '%s'", scope), err)
	}

	parts := make([]string, 0, len(p))
	for _, step := range p {
		if step.IsIndex {
			parts = append(parts, strconv.Itoa(step.Index))
			continue
		}
		parts = append(parts, escape(step.Key))
	}
	return strings.Join(parts, "."), nil
}

const special = `\.*?|#@!=<>%:`

func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
