package queue

import (
	"encoding/json"
	"fmt"

	"github.com/project-tktt/warn-crawler/internal/domain"
)

// DefaultQueue is the Redis list notices travel on from crawler to worker
const DefaultQueue = "warn:notices"

func encode(n *domain.NormalizedNotice) ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notice %s: %w", n.ID, err)
	}
	return data, nil
}

func decode(payload string) (*domain.NormalizedNotice, error) {
	var n domain.NormalizedNotice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return nil, fmt.Errorf("unmarshal notice: %w", err)
	}
	return &n, nil
}
