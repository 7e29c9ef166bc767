// ABOUTME: Gemini generateContent wire types
// ABOUTME: Request/response JSON shapes shared by chat and image calls

package genai

// content is a role-tagged group of parts
type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

// part is one piece of content. Exactly one field is set: Text for
// text parts, InlineData for encoded images. A part with neither is
// unrecognized and treated as a provider error by the scanners.
type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

// inlineData carries base64 image bytes and their mime type
type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// generateRequest is the generateContent request body
type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []safetySetting   `json:"safetySettings,omitempty"`
}

// generationConfig tunes sampling and output modalities
type generationConfig struct {
	Temperature        float64  `json:"temperature,omitempty"`
	TopP               float64  `json:"topP,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// safetySetting is one harm-category threshold
type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// generateResponse is the generateContent response body
type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

// candidate is one model answer
type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// promptFeedback reports prompt-level blocking
type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}
