package services

import (
	"context"
	"encoding/base64"

	"github.com/dosecare/dosecare-backend/internal/clients/tts"
	"github.com/dosecare/dosecare-backend/internal/logger"
)

// TTSService renders guidance text as spoken audio. It never fails the
// surrounding request: any synthesis problem degrades to empty audio.
type TTSService interface {
	Speak(ctx context.Context, text string) string
}

type ttsService struct {
	log    *logger.Logger
	client tts.Client
}

func NewTTSService(log *logger.Logger, client tts.Client) TTSService {
	return &ttsService{
		log:    log.With("service", "TTSService"),
		client: client,
	}
}

func (s *ttsService) Speak(ctx context.Context, text string) string {
	if text == "" || s.client == nil {
		return ""
	}
	audio, err := s.client.Synthesize(ctx, text)
	if err != nil {
		s.log.Warn("TTS synthesis failed, continuing without audio", "error", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(audio)
}
