package transaction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Encode serializes tx to base64 wire format. Missing signatures are sent
// as zeroed slots for the wallet to fill.
func Encode(tx *solana.Transaction) (string, error) {
	if len(tx.Signatures) == 0 {
		tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	}
	s, err := tx.ToBase64()
	if err != nil {
		return "", fmt.Errorf("encode transaction: %w", err)
	}
	return s, nil
}

// Decode parses a base64 wire transaction.
func Decode(s string) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromBase64(s)
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return tx, nil
}
