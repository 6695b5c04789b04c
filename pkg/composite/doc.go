/*
Package composite combines user key sources into the key that unlocks a container.

# How it works:

A Key is an ordered list of userkey.Source values. Order matters and duplicates are kept.
DeriveRaw hashes the 32 bytes of each source together with SHA-256, in the order they were added.

The raw key is then stretched by Transform, which encrypts both 16 byte halves with AES-256 keyed by the transform seed, once per round.
Thousands of rounds make each password guess proportionally more expensive, so the round count is tuned with Benchmark to take about a second on the target machine.
Transform checks its context before every round, so a cancelled derivation stops almost immediately and wipes its working buffer.

Finalize hashes the stretched key, and MasterKey combines it with the container's master seed.
Params holds the seeds and the round count, and can be stored next to the encrypted payload.

# General guidelines:
  - Use Key.Derive unless there's a good reason to run the steps separately. It wipes every intermediate buffer on every path.
  - Derive keys for the same container with the same Params, otherwise the result will be a different key.
  - A Key is meant to be used by one goroutine at a time.
*/
package composite
