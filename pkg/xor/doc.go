/*
Package xor provides light-weight screening of secret values held in memory.

Note that this is NOT encryption on its own.
Obfuscated keeps a value as two arrays that must be combined with XOR to get the original back, so neither array alone reveals anything useful to a passive observer such as a memory dump or a swap file.
The pad has to be kept as secret as the value itself.

# How it works:

Obfuscate generates a random pad as long as the value, and stores the value XOR the pad alongside it.
Reveal combines the two arrays into a fresh slice every time it's called, and Protect moves the result straight into a protect.Buffer.

A Screen applies a deterministic keystream from the keystream package instead of a stored pad.
Reader and Writer use a Screen to mask or unmask every byte that passes through them.
Screening the same data twice with the same algorithm and key returns the original data.

# Important note:

The same algorithm and key must be provided to reverse the process.
Failing to do so will result in garbled data.

# General guidelines:
  - Wipe revealed slices as soon as possible, or use Protect.
  - Use a fresh random key for each Screen. Salsa20 streams all use the same nonce, so reusing a key reuses the keystream.
  - Use a secure random source like crypto/rand or an entropy.Pool for pads and keys.
*/
package xor
