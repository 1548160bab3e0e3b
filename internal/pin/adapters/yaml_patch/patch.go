package yamlpatch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// indent is the mapping indentation used when a document has to be re-encoded.
const indent = 2

const docStart = "---"

// Patch deep-merges patch into the first YAML document of src and returns
// the new content. Patch values win; nested maps merge key by key.
//
// When the merge only replaces existing single-line scalars, the new
// values are spliced into src at their original positions, so comments,
// key order, quoting, indentation and blank lines stay byte-identical.
// Any other change re-encodes the documents with a fixed 2-space indent.
// The result always starts with an explicit document marker. If nothing
// changes, src is returned as is.
func Patch(src []byte, patch map[string]any) ([]byte, error) {
	docs, err := decodeAll(src)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 || len(docs[0].Content) == 0 {
		return nil, errors.New("empty document")
	}
	root := docs[0].Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top-level node is not a mapping")
	}

	m := &merger{}
	if err := m.merge(root, patch); err != nil {
		return nil, err
	}
	if len(m.edits) == 0 && !m.structural {
		return src, nil
	}

	if !m.structural {
		if out, ok := splice(src, m.edits); ok {
			return withDocStart(out), nil
		}
	}

	out, err := encodeAll(docs)
	if err != nil {
		return nil, err
	}
	return withDocStart(out), nil
}

func decodeAll(src []byte) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	var docs []*yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
		docs = append(docs, &doc)
	}
}

func encodeAll(docs []*yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// edit is an in-place replacement of one scalar value.
type edit struct {
	line, column int // 1-based position of the original token
	style        yaml.Style
	oldValue     string
	newValue     string
	tag          string
}

type merger struct {
	edits      []edit
	structural bool // a node was added or replaced wholesale
}

func (m *merger) merge(node *yaml.Node, patch map[string]any) error {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		idx := valueIndex(node, k)

		if sub, ok := patch[k].(map[string]any); ok {
			if idx >= 0 && node.Content[idx].Kind == yaml.MappingNode {
				if err := m.merge(node.Content[idx], sub); err != nil {
					return err
				}
				continue
			}
		}

		var next yaml.Node
		if err := next.Encode(patch[k]); err != nil {
			return fmt.Errorf("encoding patch value for %q: %w", k, err)
		}

		if idx >= 0 {
			cur := node.Content[idx]
			if cur.Kind == yaml.ScalarNode && next.Kind == yaml.ScalarNode {
				if cur.Value == next.Value && cur.ShortTag() == next.ShortTag() {
					continue
				}
				m.edits = append(m.edits, edit{
					line:     cur.Line,
					column:   cur.Column,
					style:    cur.Style,
					oldValue: cur.Value,
					newValue: next.Value,
					tag:      next.Tag,
				})
				cur.Value = next.Value
				cur.Tag = next.Tag
				continue
			}
			node.Content[idx] = &next
			m.structural = true
			continue
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&next,
		)
		m.structural = true
	}
	return nil
}

// valueIndex returns the index in node.Content of the value for key, or -1.
func valueIndex(node *yaml.Node, key string) int {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return i + 1
		}
	}
	return -1
}

// splice rewrites each edited scalar token in src. It reports false when
// any token cannot be located unambiguously on a single line.
func splice(src []byte, edits []edit) ([]byte, bool) {
	type span struct {
		start, end int
		text       string
	}

	lineStarts := []int{0}
	for i, b := range src {
		if b == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}

	spans := make([]span, 0, len(edits))
	for _, e := range edits {
		if e.line < 1 || e.line > len(lineStarts) {
			return nil, false
		}
		off := lineStarts[e.line-1]
		for c := 1; c < e.column && off < len(src); c++ {
			_, size := utf8.DecodeRune(src[off:])
			off += size
		}
		n, ok := tokenLen(src[off:], e)
		if !ok {
			return nil, false
		}
		text, ok := renderScalar(e)
		if !ok {
			return nil, false
		}
		spans = append(spans, span{start: off, end: off + n, text: text})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start > spans[j].start })

	out := append([]byte(nil), src...)
	for _, s := range spans {
		out = append(out[:s.start], append([]byte(s.text), out[s.end:]...)...)
	}
	return out, true
}

// tokenLen returns the byte length of the scalar token at the start of rest.
func tokenLen(rest []byte, e edit) (int, bool) {
	switch {
	case e.style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0:
		return 0, false
	case e.style&yaml.DoubleQuotedStyle != 0:
		if len(rest) == 0 || rest[0] != '"' {
			return 0, false
		}
		for i := 1; i < len(rest); i++ {
			switch rest[i] {
			case '\\':
				i++
			case '"':
				return i + 1, true
			case '\n':
				return 0, false
			}
		}
		return 0, false
	case e.style&yaml.SingleQuotedStyle != 0:
		if len(rest) == 0 || rest[0] != '\'' {
			return 0, false
		}
		for i := 1; i < len(rest); i++ {
			switch rest[i] {
			case '\'':
				if i+1 < len(rest) && rest[i+1] == '\'' {
					i++
					continue
				}
				return i + 1, true
			case '\n':
				return 0, false
			}
		}
		return 0, false
	default:
		n := len(e.oldValue)
		if n == 0 || !bytes.HasPrefix(rest, []byte(e.oldValue)) {
			return 0, false
		}
		if n == len(rest) {
			return n, true
		}
		switch rest[n] {
		case '\n', '\r', ' ', '\t', ',', ']', '}':
			return n, true
		}
		return 0, false
	}
}

// renderScalar formats the new value in the original token's quoting style.
// A plain value that would not read back as its tag gets quoted.
func renderScalar(e edit) (string, bool) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   e.tag,
		Value: e.newValue,
		Style: e.style & (yaml.DoubleQuotedStyle | yaml.SingleQuotedStyle),
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", false
	}
	text := strings.TrimSuffix(string(out), "\n")
	text = strings.TrimSuffix(text, "\n...")
	if text == "" || strings.Contains(text, "\n") {
		return "", false
	}
	return text, true
}

// withDocStart prefixes b with an explicit document marker unless the first
// non-comment line already is one. Directives (%YAML, %TAG) must precede
// the marker, so a leading directive leaves b untouched.
func withDocStart(b []byte) []byte {
	for _, line := range strings.Split(string(b), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if trimmed == docStart || strings.HasPrefix(trimmed, docStart+" ") || strings.HasPrefix(line, "%") {
			return b
		}
		break
	}
	return append([]byte(docStart+"\n"), b...)
}
