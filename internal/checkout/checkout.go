package checkout

import (
	"strings"
	"unicode"
)

// Stage is the single source of truth for where a session is in checkout.
type Stage string

const (
	StageNone    Stage = ""
	StageName    Stage = "name"
	StagePhone   Stage = "phone"
	StageAddress Stage = "address"
)

// Step returns the 1-based step number shown to users, 0 outside checkout.
func (s Stage) Step() int {
	switch s {
	case StageName:
		return 1
	case StagePhone:
		return 2
	case StageAddress:
		return 3
	}
	return 0
}

// Checkout holds the details collected so far. Fields are only meaningful once their stage has passed.
type Checkout struct {
	Stage   Stage  `json:"stage"`
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c Checkout) Active() bool {
	return c.Stage != StageNone
}

// ValidPhone accepts any text carrying at least one digit.
func ValidPhone(text string) bool {
	return strings.IndexFunc(text, unicode.IsDigit) >= 0
}
