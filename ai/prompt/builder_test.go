package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grambharat/gramsathi/store"
)

func TestBuildBareConversation(t *testing.T) {
	messages := Build("", &store.ContextRecord{}, nil, nil, "hello")
	require.Len(t, messages, 1)
	require.Equal(t, "user", messages[0].Role)
	require.Equal(t, "hello", messages[0].Content)
}

func TestBuildSystemSections(t *testing.T) {
	ctxRec := &store.ContextRecord{
		Season:    store.SeasonMonsoon,
		Location:  "Muzaffarpur, Bihar",
		CropCycle: "Kharif sowing",
	}
	memories := []*store.MemoryRecord{
		{Content: "grows wheat on 3 acres"},
		{Content: "has two daughters"},
	}

	messages := Build("You are Gram Mitra.", ctxRec, memories, nil, "hello")
	require.Len(t, messages, 2)
	require.Equal(t, "system", messages[0].Role)

	system := messages[0].Content
	require.Contains(t, system, "You are Gram Mitra.")
	require.Contains(t, system, "Current context:")
	require.Contains(t, system, "- Season: Monsoon")
	require.Contains(t, system, "- Location: Muzaffarpur, Bihar")
	require.Contains(t, system, "- Crop cycle: Kharif sowing")
	require.NotContains(t, system, "Festival")
	require.Contains(t, system, "Things you remember about the user:")
	require.Contains(t, system, "- grows wheat on 3 acres")
	require.Contains(t, system, "- has two daughters")
}

func TestBuildContextOnly(t *testing.T) {
	ctxRec := &store.ContextRecord{Festival: "Chhath Puja"}
	messages := Build("   ", ctxRec, nil, nil, "hi")
	require.Len(t, messages, 2)
	require.Equal(t, "Current context:\n- Festival: Chhath Puja", messages[0].Content)
}

func TestBuildHistoryUsesActiveAlternative(t *testing.T) {
	branched := store.Message{Role: store.RoleAssistant, Content: "first answer"}
	branched.Branch("second answer")

	history := []store.Message{
		{Role: store.RoleUser, Content: "question"},
		branched,
	}

	messages := Build("", &store.ContextRecord{}, nil, history, "follow up")
	require.Len(t, messages, 3)
	require.Equal(t, "question", messages[0].Content)
	require.Equal(t, "assistant", messages[1].Role)
	require.Equal(t, "second answer", messages[1].Content)
	require.Equal(t, "follow up", messages[2].Content)
}

func TestBuildNoUserTurnReplaysHistory(t *testing.T) {
	history := []store.Message{
		{Role: store.RoleUser, Content: "question"},
	}
	messages := Build("", &store.ContextRecord{}, nil, history, "")
	require.Len(t, messages, 1)
	require.Equal(t, "user", messages[0].Role)
	require.Equal(t, "question", messages[0].Content)
}
