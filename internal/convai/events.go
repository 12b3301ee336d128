package convai

// Server event types.
const (
	eventInitiationMetadata      = "conversation_initiation_metadata"
	eventAudio                   = "audio"
	eventAgentResponse           = "agent_response"
	eventAgentResponseCorrection = "agent_response_correction"
	eventUserTranscript          = "user_transcript"
	eventInterruption            = "interruption"
	eventPing                    = "ping"
)

type serverEvent struct {
	Type string `json:"type"`

	InitiationMetadata *struct {
		ConversationID         string `json:"conversation_id"`
		AgentOutputAudioFormat string `json:"agent_output_audio_format"`
	} `json:"conversation_initiation_metadata_event,omitempty"`

	Audio *struct {
		AudioBase64 string `json:"audio_base_64"`
		EventID     int    `json:"event_id"`
	} `json:"audio_event,omitempty"`

	AgentResponse *struct {
		AgentResponse string `json:"agent_response"`
	} `json:"agent_response_event,omitempty"`

	AgentResponseCorrection *struct {
		OriginalAgentResponse  string `json:"original_agent_response"`
		CorrectedAgentResponse string `json:"corrected_agent_response"`
	} `json:"agent_response_correction_event,omitempty"`

	UserTranscription *struct {
		UserTranscript string `json:"user_transcript"`
	} `json:"user_transcription_event,omitempty"`

	Interruption *struct {
		EventID int `json:"event_id"`
	} `json:"interruption_event,omitempty"`

	Ping *struct {
		EventID int `json:"event_id"`
		PingMs  int `json:"ping_ms"`
	} `json:"ping_event,omitempty"`
}

type initiationMessage struct {
	Type                       string         `json:"type"`
	CustomLLMExtraBody         map[string]any `json:"custom_llm_extra_body"`
	ConversationConfigOverride map[string]any `json:"conversation_config_override"`
	DynamicVariables           map[string]any `json:"dynamic_variables"`
}

type pongMessage struct {
	Type    string `json:"type"`
	EventID int    `json:"event_id"`
}

type audioChunkMessage struct {
	UserAudioChunk string `json:"user_audio_chunk"`
}
