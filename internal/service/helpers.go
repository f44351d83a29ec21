package service

import (
	"strings"

	"github.com/yourorg/internship-platform/internal/model"
)

// hasRole reports whether actor holds one of roles
func hasRole(actor model.Actor, roles ...string) bool {
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}

// reviewMessage appends the reviewer's comment to a status message
func reviewMessage(message, comment string) string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return message
	}
	return message + "\nComment: " + comment
}

func lower(s string) string {
	return strings.ToLower(s)
}
