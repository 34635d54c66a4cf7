package schema

// Input is the default chat input schema
type Input struct {
	Base
	// ChatMessage is the chat message from the user
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The chat message sent by the user to the assistant."`
}

// NewInput returns a new Input
func NewInput(msg string) *Input {
	return &Input{ChatMessage: msg}
}

func (s Input) String() string {
	return s.ChatMessage
}

func (s *Input) Unmarshal(bs []byte) error {
	s.ChatMessage = string(bs)
	return nil
}

// Output is the default chat output schema
type Output struct {
	Base
	// ChatMessage is the response from the assistant
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The response message from the assistant."`
}

// NewOutput returns a new Output
func NewOutput(msg string) *Output {
	return &Output{ChatMessage: msg}
}

func (s Output) String() string {
	return s.ChatMessage
}

func (s *Output) Unmarshal(bs []byte) error {
	s.ChatMessage = string(bs)
	return nil
}
