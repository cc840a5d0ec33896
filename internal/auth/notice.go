package auth

import (
	"context"
	"time"
)

// NoticeType is the severity of a notice.
type NoticeType string

// Notice severities.
const (
	NoticeError   NoticeType = "error"
	NoticeWarning NoticeType = "warning"
	NoticeSuccess NoticeType = "success"
	NoticeInfo    NoticeType = "info"
)

// Notice is a timed, user-facing message.
type Notice struct {
	Type      NoticeType    `json:"type"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	ShowClose bool          `json:"showClose"`
}

// Choice is the answer to a confirm/cancel prompt.
type Choice int

// Prompt answers.
const (
	ChoiceCancel Choice = iota
	ChoiceConfirm
)

func (c Choice) String() string {
	if c == ChoiceConfirm {
		return "confirm"
	}
	return "cancel"
}

// Prompt is a confirm/cancel question.
type Prompt struct {
	Title   string
	Message string
	Confirm string
	Cancel  string
	Type    NoticeType
}

// SessionExpiredPrompt asks whether to log in again after token expiry.
var SessionExpiredPrompt = Prompt{
	Title:   "Session Expired",
	Message: "Session expired, refresh or stay on the current page?",
	Confirm: "Refresh",
	Cancel:  "Stay",
	Type:    NoticeWarning,
}

// Prompter asks the user a confirm/cancel question.
type Prompter interface {
	Prompt(ctx context.Context, p Prompt) (Choice, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, p Prompt) (Choice, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(ctx context.Context, p Prompt) (Choice, error) {
	return f(ctx, p)
}

// Always answers every prompt with c.
func Always(c Choice) Prompter {
	return PrompterFunc(func(context.Context, Prompt) (Choice, error) {
		return c, nil
	})
}
