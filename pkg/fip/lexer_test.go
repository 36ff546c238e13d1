package fip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := NewLexer("test.fip", src).Lex()
	require.NoError(t, err)
	return tokens
}

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexIdentifiers(t *testing.T) {
	t.Run("plain identifier", func(t *testing.T) {
		tokens := lexAll(t, "foo-bar")
		require.Equal(t, []TokenKind{TokIdent, TokEOF}, kinds(tokens))
		assert.Equal(t, "foo-bar", tokens[0].Text)
	})

	t.Run("impure suffix", func(t *testing.T) {
		tokens := lexAll(t, "log!")
		assert.Equal(t, "log!", tokens[0].Text)
	})

	t.Run("predicate suffix", func(t *testing.T) {
		tokens := lexAll(t, "empty?")
		assert.Equal(t, "empty?", tokens[0].Text)
	})

	t.Run("keywords", func(t *testing.T) {
		tokens := lexAll(t, "use from as async await true false null")
		require.Equal(t, []TokenKind{
			TokUse, TokFrom, TokAs, TokAsync, TokAwait, TokTrue, TokFalse, TokNull, TokEOF,
		}, kinds(tokens))
	})
}

func TestLexNumbers(t *testing.T) {
	tokens := lexAll(t, "42")
	require.Equal(t, TokNumber, tokens[0].Kind)
	assert.EqualValues(t, 42, tokens[0].Number)
}

func TestLexStrings(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		tokens := lexAll(t, `"hello world"`)
		require.Equal(t, TokString, tokens[0].Kind)
		assert.Equal(t, "hello world", tokens[0].Text)
	})

	t.Run("escapes", func(t *testing.T) {
		tokens := lexAll(t, `"a\nb\tc\\d\"e"`)
		assert.Equal(t, "a\nb\tc\\d\"e", tokens[0].Text)
	})

	t.Run("interpolation left raw for the parser", func(t *testing.T) {
		tokens := lexAll(t, `"hello <name>"`)
		assert.Equal(t, "hello <name>", tokens[0].Text)
	})

	t.Run("unterminated is a lex error", func(t *testing.T) {
		_, err := NewLexer("test.fip", `"unterminated`).Lex()
		require.Error(t, err)
		var lexErr *LexError
		require.ErrorAs(t, err, &lexErr)
	})
}

func TestLexOperatorsAndPunctuation(t *testing.T) {
	tokens := lexAll(t, "<= >= ... : , . ; ( ) { } [ ] + - * / = ≠ < > & | ! ?")
	require.Equal(t, []TokenKind{
		TokLtEq, TokGtEq, TokEllipsis, TokColon, TokComma, TokDot, TokSemicolon,
		TokLParen, TokRParen, TokLBrace, TokRBrace, TokLBracket, TokRBracket,
		TokPlus, TokMinus, TokStar, TokSlash, TokEq, TokNotEq, TokLt, TokGt,
		TokAmp, TokPipe, TokBang, TokQuestion, TokEOF,
	}, kinds(tokens))
}

func TestLexComments(t *testing.T) {
	tokens := lexAll(t, "1 // a comment\n2")
	require.Equal(t, []TokenKind{TokNumber, TokNewline, TokNumber, TokEOF}, kinds(tokens))
}

func TestLexUnexpectedCharacter(t *testing.T) {
	_, err := NewLexer("test.fip", "@").Lex()
	require.Error(t, err)
}
