package handler

import (
	"github.com/VladKvetkin/gofood/internal/lifecycle"
	"github.com/VladKvetkin/gofood/internal/services/jwttoken"
	"github.com/VladKvetkin/gofood/internal/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Handler struct {
	storage   storage.Storage
	lifecycle *lifecycle.Service
	tokens    *jwttoken.Manager
}

func NewHandler(storage storage.Storage, lifecycle *lifecycle.Service, tokens *jwttoken.Manager) *Handler {
	return &Handler{
		storage:   storage,
		lifecycle: lifecycle,
		tokens:    tokens,
	}
}
