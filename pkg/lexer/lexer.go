// Package lexer turns a word.Stream into a token.Token stream, expanding
// tabs into columns and dispatching to a Script or Shader tokenizer rule
// set depending on the source's leading "context" directive.
package lexer

import (
	"fmt"

	"arctic.dev/arctic/pkg/token"
	"arctic.dev/arctic/pkg/word"
)

// Rules selects which tokenizer rule table classifies AlphaNum/Punctuation
// words into Tokens. Provided defers the choice to the source's own leading
// "context Script"/"context Shader" directive.
type Rules uint8

const (
	Provided Rules = iota
	Script
	Shader
)

type Options struct {
	Rules   Rules
	TabSize uint32
}

// tokenizerFn classifies the word at the cursor into a Token, advancing the
// cursor past it (unless it reports skip=true, meaning it already consumed
// the next word as a lookahead and the caller must not advance again).
type tokenizerFn func(cur word.Word, words *word.Stream, loc token.Location) (result token.Token, next word.Word, skip bool)

var tokenizerTable = map[Rules]tokenizerFn{
	Script: tokenizeScript,
	Shader: tokenizeShader,
}

// Lexer is a single-use, lazy cursor producing Tokens from a word.Stream.
type Lexer struct {
	words   *word.Stream
	opts    Options
	cur     word.Word
	colOff  uint32
	started bool
	err     error
	done    bool
}

func New(words *word.Stream, opts Options) *Lexer {
	if opts.TabSize == 0 {
		opts.TabSize = 4
	}
	return &Lexer{words: words, opts: opts}
}

func (l *Lexer) resolveProvidedRules() error {
	w := l.words.Next()
	for w.Category != word.AlphaNum {
		if w.Category == word.EndOfFile {
			return fmt.Errorf("lexer: reached end of file while looking for 'context' directive")
		}
		w = l.words.Next()
	}

	if string(w.Text) != "context" {
		return fmt.Errorf("lexer: expected 'context' directive, got %q", w.Text)
	}

	w = l.words.Next()
	if w.Category != word.Whitespace {
		return fmt.Errorf("lexer: expected whitespace after 'context'")
	}

	w = l.words.Next()
	if w.Category != word.AlphaNum {
		return fmt.Errorf("lexer: expected context name after 'context'")
	}

	switch string(w.Text) {
	case "Script":
		l.opts.Rules = Script
	case "Shader":
		l.opts.Rules = Shader
	default:
		return fmt.Errorf("lexer: unknown context %q, expected Script or Shader", w.Text)
	}

	return nil
}

// Next lazily produces the next Token, terminating forever after with
// token.STEndOfFile once the source is exhausted.
func (l *Lexer) Next() (token.Token, error) {
	if l.err != nil {
		return token.Token{}, l.err
	}
	if l.done {
		return token.Token{Type: token.STEndOfFile}, nil
	}

	if !l.started {
		l.started = true
		if l.opts.Rules == Provided {
			if err := l.resolveProvidedRules(); err != nil {
				l.err = err
				return token.Token{}, err
			}
		}
		l.cur = l.words.Next()
	}

	tokenizer, ok := tokenizerTable[l.opts.Rules]
	if !ok {
		err := fmt.Errorf("lexer: no tokenizer registered for rule set %v", l.opts.Rules)
		l.err = err
		return token.Token{}, err
	}

	for l.cur.Category != word.EndOfFile {
		line := l.cur.Location.Line + 1

		if l.cur.Category == word.Whitespace {
			for _, b := range l.cur.Text {
				if b == '\t' {
					l.colOff += l.opts.TabSize
				} else {
					l.colOff++
				}
			}
			l.colOff -= uint32(len(l.cur.Text))
			l.cur = l.words.Next()
			continue
		}

		loc := token.Location{Line: line, Column: 1 + l.cur.Location.Character + l.colOff}
		result, next, skip := tokenizer(l.cur, l.words, loc)

		if l.cur.Category == word.EndOfLine {
			l.colOff = 0
		}

		if skip {
			l.cur = next
		} else {
			l.cur = l.words.Next()
		}

		return result, nil
	}

	l.done = true
	return token.Token{Type: token.STEndOfFile, Location: token.Location{Line: l.cur.Location.Line + 1}}, nil
}
