package receipt

import (
	"context"
)

type StubClient struct {
	Response string
	Err      error

	LastPrompt   string
	LastMimeType string
}

func (s *StubClient) GenerateFromImage(ctx context.Context, prompt string, base64Image string, mimeType string) (string, error) {
	s.LastPrompt = prompt
	s.LastMimeType = mimeType
	return s.Response, s.Err
}

func (s *StubClient) GenerateFromText(ctx context.Context, prompt string) (string, error) {
	s.LastPrompt = prompt
	return s.Response, s.Err
}
