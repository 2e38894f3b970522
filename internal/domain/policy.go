package domain

import "fmt"

// MayTransfer decides whether a transfer is permitted right now. Two
// independent gates must both pass: the number of transfers already sent
// today must be under the daily cap, and the account balance must be at or
// above the configured minimum. When the transfer is forbidden, reason names
// the gate that failed; either way the caller treats a refusal as a skip,
// not a fatal condition.
func MayTransfer(transfersToday, dailyCap int, balance, minBalance float64) (allowed bool, reason string) {
	if transfersToday >= dailyCap {
		return false, fmt.Sprintf("daily transfer limit reached (%d/%d)", transfersToday, dailyCap)
	}
	if balance < minBalance {
		return false, fmt.Sprintf("insufficient balance: %.3f HBD (minimum %.3f)", balance, minBalance)
	}
	return true, ""
}
