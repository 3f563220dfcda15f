package stages

// captions holds the markdown explanation shown beside each stage.
var captions = map[string]string{
	StageIntro: "## Inside a Transformer Block\n\n" +
		"Scroll to walk one sentence through a single encoder block.",
	StageEmbedding: "## Embedding\n\n" +
		"Every token is looked up in an embedding table and becomes a vector, drawn here as a bar.",
	StagePositional: "## Positional Encoding\n\n" +
		"Attention has no notion of order, so a position signal is **added** to each embedding.",
	StageInputSplit: "## Split Into Heads\n\n" +
		"Each head receives its own copy of every token vector and attends independently.",
	StageQKV: "## Queries, Keys and Values\n\n" +
		"Three learned projections produce a *query*, a *key* and a *value* per token.",
	StageScores: "## Attention Scores\n\n" +
		"Every query is compared with every key. Brighter lines carry more weight.",
	StageSoftmax: "## Softmax\n\n" +
		"Scores in a row are normalised so they sum to one:\n\n" +
		"```go\nfor j := range row {\n\trow[j] /= sum\n}\n```",
	StageWeightedSum: "## Weighted Sum\n\n" +
		"Values are mixed using the weights, giving one output vector per token per head.",
	StageConcat: "## Concatenate Heads\n\n" +
		"The per-head outputs are joined back into a single vector per token.",
	StageAddNorm1: "## Add & Norm\n\n" +
		"The block input is added back (a residual connection) and the sum is layer-normalised.",
	StageFFN: "## Feed-Forward\n\n" +
		"A two-layer network expands each vector, applies a non-linearity, then contracts it again.",
	StageAddNorm2: "## Add & Norm\n\n" +
		"A second residual add and normalisation produce the block output.",
}

// Caption returns the markdown caption of stage id.
func Caption(id string) string { return captions[id] }
