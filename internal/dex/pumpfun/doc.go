// Package pumpfun implements the Pump.fun bonding-curve venue.
//
// The package provides:
//   - config.go: program addresses and PDA derivation.
//   - state.go: decoding of the bonding curve and global accounts.
//   - source.go: the chain-backed CurveSource (one batched RPC per lookup).
//   - instructions.go: buy/sell instruction layouts.
//   - strategy.go: the dex.Strategy used by the router.
//
// Tokens are traded against native lamports, so no WSOL account is touched.
package pumpfun
