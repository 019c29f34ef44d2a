package controller

import (
	"errors"
	"strconv"
	"time"
)

var ErrValidationError = errors.New("validation error")

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type EmptyInput struct{}

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
