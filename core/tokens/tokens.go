// Package tokens estimates BPE token counts for outgoing transcripts. The
// counts are approximate: routed endpoints may use other tokenizers.
package tokens

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Per-message framing overhead in the OpenAI chat format, plus the reply
// priming tokens added once per request.
const (
	messageOverhead = 4
	replyPriming    = 3
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
	codecErr  error
)

func encoder() (tokenizer.Codec, error) {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.O200kBase)
		if codecErr != nil {
			codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
		}
	})
	return codec, codecErr
}

// Count returns the number of tokens in text, or 0 when no encoder is
// available.
func Count(text string) int {
	if text == "" {
		return 0
	}
	enc, err := encoder()
	if err != nil {
		return 0
	}
	ids, _, _ := enc.Encode(text)
	return len(ids)
}

// CountMessages estimates the prompt size of a chat request carrying msgs.
func CountMessages(msgs []protocol.Message) int {
	if len(msgs) == 0 {
		return 0
	}
	total := replyPriming
	for _, m := range msgs {
		total += messageOverhead + Count(string(m.Role)) + Count(m.Content)
	}
	return total
}
