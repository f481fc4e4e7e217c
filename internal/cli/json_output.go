// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// jsonStyle is the chroma style for highlighted JSON.
const jsonStyle = "monokai"

// WriteJSON writes v as indented JSON. With color set the output is
// syntax highlighted for a terminal; pipes get plain JSON.
func WriteJSON(w io.Writer, v any, color bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	data = append(data, '\n')

	if !color {
		_, err := w.Write(data)
		return err
	}

	highlighted, err := highlightJSON(string(data))
	if err != nil {
		_, err := w.Write(data)
		return err
	}
	_, err = io.WriteString(w, highlighted)
	return err
}

// highlightJSON colors JSON text with chroma's terminal256 formatter.
func highlightJSON(text string) (string, error) {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := chromaStyles.Get(jsonStyle)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}
