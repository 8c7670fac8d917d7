package common

import "time"

type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// AddParams carries the text after the add command, e.g. "10m tea".
type AddParams struct {
	Text string `json:"text"`
}

type AddResult struct {
	ID        uint64    `json:"id"`
	Label     string    `json:"label"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RemoveParams selects a timer by ID, or by the first number found in Text
// when ID is unset.
type RemoveParams struct {
	ID   *uint64 `json:"id,omitempty"`
	Text string  `json:"text,omitempty"`
}

type MessageResult struct {
	Message string `json:"message"`
}

type TimerInfo struct {
	ID        uint64    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Remaining string    `json:"remaining"`
}

type ListResult struct {
	Timers []TimerInfo `json:"timers"`
	Lines  []string    `json:"lines"`
}

type CommandParams struct {
	Line string `json:"line"`
}

type CommandResult struct {
	Lines []string `json:"lines"`
}

// TimerNotification is the payload of every alarm.* push notification.
type TimerNotification struct {
	ID      uint64 `json:"id"`
	Label   string `json:"label"`
	Message string `json:"message"`
}
