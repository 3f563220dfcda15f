package model

import "strings"

// Token is one atomic unit of the fixed input text.
type Token struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ColorStage records how far an embedding bar has travelled through the block.
type ColorStage string

const (
	ColorBase          ColorStage = "base"
	ColorPostAttention ColorStage = "post-attention"
	ColorPostFFN       ColorStage = "post-ffn"
	ColorFinal         ColorStage = "final"
)

// stageColors maps each color stage to its fill.
var stageColors = map[ColorStage]string{
	ColorBase:          "#4e79a7",
	ColorPostAttention: "#f28e2b",
	ColorPostFFN:       "#59a14f",
	ColorFinal:         "#b07aa1",
}

// Fill returns the bar fill color for the stage.
func (c ColorStage) Fill() string {
	if f, ok := stageColors[c]; ok {
		return f
	}
	return stageColors[ColorBase]
}

// EmbeddingVector is the visual proxy for a token's vector representation.
// Generation 0 is the base bar, generation h+1 the clone owned by head h, and
// the generation after the last head the merged bar.
type EmbeddingVector struct {
	Owner      int        `json:"owner"`
	Generation int        `json:"generation"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	ColorStage ColorStage `json:"color_stage"`
}

// Tokenize splits text on whitespace into indexed tokens.
func Tokenize(text string) []Token {
	return TokensFrom(strings.Fields(text))
}

// TokensFrom indexes a fixed, ordered list of token strings. Blank entries
// are dropped.
func TokensFrom(words []string) []Token {
	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		tokens = append(tokens, Token{Index: len(tokens), Text: w})
	}
	return tokens
}

// Texts returns the token strings in order.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}
