package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3mask/internal/bridge"
)

// ChainLabeler turns a session chain id into something readable. It returns
// "" for chains it does not know.
type ChainLabeler func(chainID string) string

// SessionPairs lists the fields of s for a KeyValueBlock.
func SessionPairs(s bridge.State, label ChainLabeler) [][2]string {
	wallet := "not installed"
	if s.Installed {
		wallet = s.Wallet
		if wallet == "" {
			wallet = "installed"
		}
	}
	status := StyleWarning.Render("not connected")
	if s.Active {
		status = StyleSuccess.Render("connected")
	}

	chain := "-"
	if s.ChainID != "" {
		chain = s.ChainID
		if label != nil {
			if name := label(s.ChainID); name != "" {
				chain = fmt.Sprintf("%s (%s)", name, s.ChainID)
			}
		}
	}

	account := "-"
	if a := s.Account(); a != "" {
		account = a
	}

	pairs := [][2]string{
		{"Wallet", wallet},
		{"Status", status},
		{"Chain", chain},
		{"Account", account},
	}
	if len(s.Accounts) > 1 {
		pairs = append(pairs, [2]string{"Other accounts", strings.Join(s.Accounts[1:], ", ")})
	}
	pairs = append(pairs, [2]string{"Session", fmt.Sprintf("#%d", s.Generation)})
	return pairs
}

// Session renders s as a bordered block.
func Session(s bridge.State, label ChainLabeler) string {
	return KeyValueBlock("Wallet session", SessionPairs(s, label))
}
