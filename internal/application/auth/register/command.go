// Package register creates new user accounts.
package register

import "github.com/google/uuid"

const CommandType = "auth.register"

type Command struct {
	Email       string
	Password    string
	DisplayName string
}

func (Command) CommandType() string { return CommandType }

type Response struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}
