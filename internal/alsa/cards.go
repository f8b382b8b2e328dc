//go:build linux

package alsa

import (
	"fmt"

	"github.com/charmbracelet/log"
	alsalib "github.com/gen2brain/alsa"
)

// ListCards enumerates all available sound cards.
func ListCards() ([]Card, error) {
	soundCards, err := alsalib.EnumerateCards()
	if err != nil {
		return nil, fmt.Errorf("enumerate cards: %w", err)
	}
	if len(soundCards) == 0 {
		return nil, fmt.Errorf("no sound cards found")
	}

	cards := make([]Card, 0, len(soundCards))
	for _, c := range soundCards {
		cards = append(cards, Card{ID: uint(c.ID), Name: c.Name})
	}
	return cards, nil
}

// ResolveDevice turns the configured device setting into an ALSA device
// name. Anything other than "auto" passes through untouched; "auto" picks
// the configured default card, or the first hardware card that is not a
// loopback or software device.
func ResolveDevice(device string) string {
	if device != "auto" {
		return device
	}

	cards, err := ListCards()
	if err != nil {
		log.Warn("card enumeration failed, using default device", "err", err)
		return "default"
	}
	id := ResolveDefaultCard(cards, DefaultCard())
	return fmt.Sprintf("hw:%d", id)
}
