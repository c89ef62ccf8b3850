// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scanner tokenizes Monkey source files for the parser to consume.
package scanner

import (
	"context"
	"go/scanner"
	"os"
	"unicode/utf8"

	"github.com/mna/monkey/lang/token"
)

type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

var PrintError = scanner.PrintError

// ScanFiles tokenizes the given source files and returns the tokens grouped
// by file, along with any scan errors encountered. The returned error, if
// non-nil, is a scanner.ErrorList (a value, not a pointer) sorted by position.
func ScanFiles(ctx context.Context, files ...string) (*token.FileSet, [][]token.Token, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var (
		s  Scanner
		el ErrorList
	)

	fs := token.NewFileSet()
	tokensByFile := make([][]token.Token, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		fsf := fs.AddFile(file, -1, len(b))
		s.Init(fsf, b, el.Add)
		for {
			tok := s.Scan()
			tokensByFile[i] = append(tokensByFile[i], tok)
			if tok.Kind == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return fs, tokensByFile, el.Err()
}

// Scanner tokenizes a single source file.
type Scanner struct {
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	cur  rune // current character, -1 at EOF
	off  int  // byte offset of cur
	roff int  // byte offset following cur
}

// Init prepares s to scan file, whose contents are src. It panics if the
// file's recorded size does not match len(src).
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size() != len(src) {
		panic("scanner: file size does not match src length")
	}
	s.file = file
	s.src = src
	s.err = errHandler
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.advance()
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}

	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(off)), msg)
	}
}

func (s *Scanner) advanceIf(b byte) bool {
	if s.cur == rune(b) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token in the source file.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespace()

	pos := s.file.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		return token.Token{Kind: token.LookupIdent(lit), Literal: lit, Pos: pos}

	case isDigit(cur):
		lit := s.number()
		return token.Token{Kind: token.INT, Literal: lit, Pos: pos}

	default:
		s.advance() // always make progress
		switch cur {
		case '=':
			if s.advanceIf('=') {
				return token.Token{Kind: token.EQ, Literal: "==", Pos: pos}
			}
			return token.Token{Kind: token.ASSIGN, Literal: "=", Pos: pos}
		case '+':
			return token.Token{Kind: token.PLUS, Literal: "+", Pos: pos}
		case '-':
			return token.Token{Kind: token.MINUS, Literal: "-", Pos: pos}
		case '!':
			if s.advanceIf('=') {
				return token.Token{Kind: token.NOT_EQ, Literal: "!=", Pos: pos}
			}
			return token.Token{Kind: token.BANG, Literal: "!", Pos: pos}
		case '*':
			return token.Token{Kind: token.ASTERISK, Literal: "*", Pos: pos}
		case '/':
			return token.Token{Kind: token.SLASH, Literal: "/", Pos: pos}
		case '<':
			return token.Token{Kind: token.LT, Literal: "<", Pos: pos}
		case '>':
			return token.Token{Kind: token.GT, Literal: ">", Pos: pos}
		case ',':
			return token.Token{Kind: token.COMMA, Literal: ",", Pos: pos}
		case ';':
			return token.Token{Kind: token.SEMICOLON, Literal: ";", Pos: pos}
		case ':':
			return token.Token{Kind: token.COLON, Literal: ":", Pos: pos}
		case '(':
			return token.Token{Kind: token.LPAREN, Literal: "(", Pos: pos}
		case ')':
			return token.Token{Kind: token.RPAREN, Literal: ")", Pos: pos}
		case '{':
			return token.Token{Kind: token.LBRACE, Literal: "{", Pos: pos}
		case '}':
			return token.Token{Kind: token.RBRACE, Literal: "}", Pos: pos}
		case '[':
			return token.Token{Kind: token.LBRACKET, Literal: "[", Pos: pos}
		case ']':
			return token.Token{Kind: token.RBRACKET, Literal: "]", Pos: pos}
		case '"':
			lit := s.string(start)
			return token.Token{Kind: token.STRING, Literal: lit, Pos: pos}
		case -1:
			return token.Token{Kind: token.EOF, Literal: "", Pos: pos}
		default:
			s.error(start, "illegal character "+string(cur))
			return token.Token{Kind: token.ILLEGAL, Literal: string(cur), Pos: pos}
		}
	}
}

// string scans the remainder of a double-quoted string literal, the opening
// quote already consumed, and returns its content (unescaped is not
// supported; Monkey strings have no escape sequences).
func (s *Scanner) string(start int) string {
	var runes []rune
	for {
		if s.cur == '"' || s.cur == -1 {
			break
		}
		runes = append(runes, s.cur)
		s.advance()
	}
	if s.cur != '"' {
		s.error(start, "unterminated string literal")
	} else {
		s.advance()
	}
	return string(runes)
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) number() string {
	start := s.off
	for isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.cur) {
		s.advance()
	}
}

func isWhitespace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
