package cssengine

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tdewolff/parse/v2"
	cssparse "github.com/tdewolff/parse/v2/css"
	"go.trai.ch/csspost/internal/core/domain"
)

// SyntaxError locates a stylesheet defect. Line and Column are 1-based.
type SyntaxError struct {
	Line   int
	Column int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", domain.ErrSyntax.Error(), e.Line, e.Column, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return domain.ErrSyntax
}

// position tracks the 1-based location of the next token.
type position struct {
	line   int
	column int
}

func (p *position) advance(data []byte) {
	for _, b := range data {
		if b == '\n' {
			p.line++
			p.column = 1
			continue
		}
		p.column++
	}
}

// Check tokenizes a stylesheet and reports the first malformed token or unbalanced block.
func Check(css []byte) error {
	l := cssparse.NewLexer(parse.NewInput(bytes.NewReader(css)))
	pos := position{line: 1, column: 1}
	var open []position

	for {
		tt, data := l.Next()
		switch tt {
		case cssparse.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return &SyntaxError{Line: pos.line, Column: pos.column, Reason: err.Error()}
			}
			if len(open) > 0 {
				last := open[len(open)-1]
				return &SyntaxError{Line: last.line, Column: last.column, Reason: "unclosed block"}
			}
			return nil
		case cssparse.LeftBraceToken:
			open = append(open, pos)
		case cssparse.RightBraceToken:
			if len(open) == 0 {
				return &SyntaxError{Line: pos.line, Column: pos.column, Reason: "unexpected }"}
			}
			open = open[:len(open)-1]
		case cssparse.BadStringToken:
			return &SyntaxError{Line: pos.line, Column: pos.column, Reason: "unterminated string"}
		case cssparse.BadURLToken:
			return &SyntaxError{Line: pos.line, Column: pos.column, Reason: "malformed url"}
		}
		pos.advance(data)
	}
}
