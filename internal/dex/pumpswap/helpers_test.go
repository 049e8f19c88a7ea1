package pumpswap

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

func encodeGlobalConfig(cfg GlobalConfig) []byte {
	data := make([]byte, globalConfigSize)
	copy(data, GlobalConfigDiscriminator)
	pos := 8
	copy(data[pos:], cfg.Admin[:])
	pos += 32
	binary.LittleEndian.PutUint64(data[pos:], cfg.LPFeeBasisPoints)
	pos += 8
	binary.LittleEndian.PutUint64(data[pos:], cfg.ProtocolFeeBasisPoints)
	pos += 8
	data[pos] = cfg.DisableFlags
	pos++
	for _, r := range cfg.ProtocolFeeRecipients {
		copy(data[pos:], r[:])
		pos += 32
	}
	return data
}

func encodePool(p Pool) []byte {
	data := make([]byte, poolSize+32)
	copy(data, PoolDiscriminator)
	pos := 8
	data[pos] = p.PoolBump
	pos++
	binary.LittleEndian.PutUint16(data[pos:], p.Index)
	pos += 2
	for _, k := range []solana.PublicKey{p.Creator, p.BaseMint, p.QuoteMint, p.LPMint, p.PoolBaseTokenAccount, p.PoolQuoteTokenAccount} {
		copy(data[pos:], k[:])
		pos += 32
	}
	binary.LittleEndian.PutUint64(data[pos:], p.LPSupply)
	pos += 8
	copy(data[pos:], p.CoinCreator[:])
	return data
}

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}
