package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"milan/internal/external"
)

// ProxyResult - ответ удаленного backend, который передается клиенту без изменений
type ProxyResult = external.ProxyResponse

// ErrInvalidBody возвращается для пустого или не-JSON тела
var ErrInvalidBody = errors.New("request body must be a JSON object")

type PassService struct {
	backend Backend
}

func NewPassService(backend Backend) *PassService {
	return &PassService{backend: backend}
}

// Purchase пересылает тело запроса на backend вместе с заголовком Authorization
func (s *PassService) Purchase(ctx context.Context, body []byte, authorization string) (*ProxyResult, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' || !json.Valid(body) {
		return nil, ErrInvalidBody
	}

	resp, err := s.backend.PurchasePass(ctx, body, authorization)
	if err != nil {
		return nil, fmt.Errorf("failed to purchase pass: %w", err)
	}

	return resp, nil
}
