package usecase

import (
	"fmt"
	"strconv"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
)

// chatID converts the string user id the repositories store into the numeric
// chat id the messaging adapter expects.
func chatID(userID string) (int64, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse chat id %q: %w", userID, domain.ErrInvalidArgument)
	}
	return id, nil
}
