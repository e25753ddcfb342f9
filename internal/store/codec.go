package store

import (
	"encoding/json"
	"fmt"

	"github.com/growwise/growwise-client/internal/domain"
)

func encodeState(st domain.AppState) (string, error) {
	if st.Sessions == nil {
		st.Sessions = []domain.ChatSession{}
	}
	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	return string(data), nil
}

func decodeState(raw string) (*domain.AppState, error) {
	var st domain.AppState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if st.Sessions == nil {
		st.Sessions = []domain.ChatSession{}
	}
	return &st, nil
}
