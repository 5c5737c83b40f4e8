package model

import "time"

type TurnKind string

const (
	TurnNote      TurnKind = "note"
	TurnUser      TurnKind = "user"
	TurnAssistant TurnKind = "assistant"
)

// ChatTurn is one entry of the advisor conversation log.
type ChatTurn struct {
	Kind      TurnKind  `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NoteTurn(idea string) ChatTurn {
	return ChatTurn{Kind: TurnNote, Text: idea, CreatedAt: time.Now()}
}

func UserTurn(text string) ChatTurn {
	return ChatTurn{Kind: TurnUser, Text: text, CreatedAt: time.Now()}
}

func AssistantTurn(text string) ChatTurn {
	return ChatTurn{Kind: TurnAssistant, Text: text, CreatedAt: time.Now()}
}

// Line renders the turn in its flat history form.
func (t ChatTurn) Line() string {
	switch t.Kind {
	case TurnNote:
		return "Generated outfit: " + t.Text
	case TurnUser:
		return "User: " + t.Text
	case TurnAssistant:
		return "AI: " + t.Text
	default:
		return t.Text
	}
}
