// Package alsa connects the mixer core to real hardware through libasound's
// simple mixer API, and resolves which card the daemon should drive.
package alsa

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Card represents one ALSA sound card.
type Card struct {
	ID   uint
	Name string
}

// DefaultCard determines the preferred ALSA card index.
// Priority: ALSA_CARD env > ~/.asoundrc > /etc/asound.conf.
// Returns -1 if no preference is configured.
func DefaultCard() int {
	if cardStr := os.Getenv("ALSA_CARD"); cardStr != "" {
		if card, err := strconv.Atoi(cardStr); err == nil && card >= 0 {
			return card
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		if card := parseAsoundrc(home + "/.asoundrc"); card >= 0 {
			return card
		}
	}

	return parseAsoundrc("/etc/asound.conf")
}

var asoundrcCardRe = regexp.MustCompile(`(?m)^\s*defaults\.(?:pcm|ctl)\.card\s+(\S+)`)

// parseAsoundrc reads an ALSA config file for a default card setting.
// Named card references (e.g. defaults.pcm.card "PCH") are not resolved.
func parseAsoundrc(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return -1
	}

	matches := asoundrcCardRe.FindStringSubmatch(string(data))
	if len(matches) > 1 {
		if card, err := strconv.Atoi(matches[1]); err == nil && card >= 0 {
			return card
		}
	}
	return -1
}

// ResolveDefaultCard returns the card ID to use. A configured preference
// wins when it matches an existing card; otherwise the first card that is
// not a loopback or software device, falling back to the first card.
func ResolveDefaultCard(cards []Card, defaultCard int) uint {
	if defaultCard >= 0 {
		for _, c := range cards {
			if int(c.ID) == defaultCard {
				return c.ID
			}
		}
	}

	for _, c := range cards {
		name := strings.ToLower(c.Name)
		if !strings.Contains(name, "loopback") &&
			!strings.Contains(name, "null") &&
			!strings.Contains(name, "dummy") {
			return c.ID
		}
	}

	if len(cards) > 0 {
		return cards[0].ID
	}
	return 0
}
