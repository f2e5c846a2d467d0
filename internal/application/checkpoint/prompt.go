package checkpoint

import (
	"fmt"

	"github.com/cloudwego/eino/schema"

	"readrecall-api/internal/domain/entity"
)

const summarySystemPrompt = `You are a reading companion. Given the opening portion of a book, write a concise recap of everything that has happened so far, in 250-300 words. Cover the key events and the characters involved. Only use what appears in the provided text; never speculate about later parts of the book.`

const characterListSystemPrompt = `You are a reading companion. Given the opening portion of a book, list the named characters that have appeared so far. For each character give the name followed by a one-line description of their role, like the X-Ray feature of an e-reader. Only use what appears in the provided text; never speculate about later parts of the book.`

// buildMessages 按内容类型构造提示词
func buildMessages(kind entity.ArtifactKind, textSlice string) ([]*schema.Message, error) {
	var system string
	switch kind {
	case entity.ArtifactKindSummary:
		system = summarySystemPrompt
	case entity.ArtifactKindCharacterList:
		system = characterListSystemPrompt
	default:
		return nil, fmt.Errorf("unsupported artifact kind: %s", kind)
	}

	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(textSlice),
	}, nil
}
