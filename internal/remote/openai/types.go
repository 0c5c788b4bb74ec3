package openai

import (
	"errors"

	"fieldextract/internal/transport"
)

type objectRef struct {
	ID string `json:"id"`
}

type tool struct {
	Type string `json:"type"`
}

type attachment struct {
	FileID string `json:"file_id"`
	Tools  []tool `json:"tools"`
}

type messageRequest struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []attachment `json:"attachments"`
}

type runRequest struct {
	AssistantID string `json:"assistant_id"`
}

type assistantRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Model        string `json:"model"`
	Tools        []tool `json:"tools"`
}

type runObject struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

type messageList struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text *struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func asStatusError(err error) (*transport.StatusError, bool) {
	var se *transport.StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
