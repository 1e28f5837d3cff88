package instance

import "github.com/angelmondragon/atelier-bot/pkg/env"

// GetID returns the dyno or host name the bot runs on, used to tell replicas apart in logs.
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	return env.Get("HOSTNAME", "local")
}
