// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package frontmatter renders the YAML metadata block at the top of each
// exported note.
package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qquill2md/pkg/types"
)

const delimiter = "---\n"

// Generate returns a front-matter block listing the requested fields of rec
// in the order given. Object values become nested YAML blocks, everything
// else is written as a single "field: value" line. Fields missing from rec
// are skipped.
func Generate(rec types.Record, fields []string) (string, error) {
	var b strings.Builder
	b.WriteString(delimiter)

	for _, field := range fields {
		raw, ok := rec.Lookup(field)
		if !ok {
			continue
		}

		node, err := toNode(raw)
		if err != nil {
			return "", fmt.Errorf("front matter field %q: %w", field, err)
		}

		if node.Kind == yaml.MappingNode {
			block, err := nestedBlock(field, node)
			if err != nil {
				return "", fmt.Errorf("front matter field %q: %w", field, err)
			}
			b.WriteString(block)
			continue
		}

		value, err := inlineValue(field, node)
		if err != nil {
			return "", fmt.Errorf("front matter field %q: %w", field, err)
		}
		fmt.Fprintf(&b, "%s: %s\n", field, value)
	}

	b.WriteString(delimiter)
	return b.String(), nil
}

// nestedBlock serializes {field: node} in block style with two-space indent.
func nestedBlock(field string, node *yaml.Node) (string, error) {
	root := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: field},
			node,
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// inlineValue renders a non-object value on one line. Strings are written
// verbatim unless that would break the block, in which case they are
// double-quoted; sequences use YAML flow style.
func inlineValue(field string, node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!str" || readsBack(field, node.Value) {
			return node.Value, nil
		}
		node.Style = yaml.DoubleQuotedStyle
		out, err := yaml.Marshal(node)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(out), "\n"), nil
	case yaml.SequenceNode:
		setFlow(node)
		out, err := yaml.Marshal(node)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(out), "\n"), nil
	default:
		return "", fmt.Errorf("unsupported value kind %v", node.Kind)
	}
}

// readsBack reports whether "field: value" parses as YAML without turning
// value into a collection or into a different string. Strings that read back
// as numbers, booleans, or null are left alone.
func readsBack(field, value string) bool {
	var m map[string]any
	if err := yaml.Unmarshal([]byte(field+": "+value+"\n"), &m); err != nil {
		return false
	}
	if len(m) != 1 {
		return false
	}
	v, ok := m[field]
	if !ok {
		return false
	}
	switch got := v.(type) {
	case map[string]any, []any:
		return false
	case string:
		return got == value
	}
	return true
}

func setFlow(n *yaml.Node) {
	if n.Kind == yaml.SequenceNode || n.Kind == yaml.MappingNode {
		n.Style = yaml.FlowStyle
	}
	for _, c := range n.Content {
		setFlow(c)
	}
}

// toNode converts a raw JSON value into a yaml.Node, keeping object key order.
func toNode(raw json.RawMessage) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return decodeNode(dec)
}

func decodeNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeMapping(dec)
		case '[':
			seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				seq.Content = append(seq.Content, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return seq, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", v)
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(v.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}, nil
	case bool:
		value := "false"
		if v {
			value = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: value}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// decodeMapping reads object members up to the closing brace. A repeated key
// keeps its first position and its last value.
func decodeMapping(dec *json.Decoder) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		value, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}

		if i, seen := index[key]; seen {
			m.Content[i+1] = value
			continue
		}
		index[key] = len(m.Content)
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value,
		)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}
