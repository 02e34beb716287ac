package assistant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscriptAppendDoesNotMutateReceiver(t *testing.T) {
	base := NewTranscript(
		Message{Role: RoleSystem, Content: "system"},
		Message{Role: RoleUser, Content: "hola"},
	)
	extended := base.Append(Message{Role: RoleAssistant, Content: "respuesta"})

	require.Equal(t, 2, base.Len())
	require.Equal(t, 3, extended.Len())

	messages := extended.Messages()
	require.Equal(t, "system", messages[0].Content)
	require.Equal(t, "respuesta", messages[2].Content)
}

func TestTranscriptMessagesReturnsCopy(t *testing.T) {
	transcript := NewTranscript(Message{Role: RoleUser, Content: "hola"})
	messages := transcript.Messages()
	messages[0].Content = "mutated"

	require.Equal(t, "hola", transcript.Messages()[0].Content)
}

func TestTranscriptAppendEmpty(t *testing.T) {
	transcript := NewTranscript(Message{Role: RoleUser, Content: "hola"})
	same := transcript.Append()
	require.Equal(t, transcript.Len(), same.Len())
}
