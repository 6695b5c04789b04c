/*
Package keystream provides reproducible pseudo-random byte streams for masking protected values in memory.

# How it works:

A Stream is constructed with an Algorithm and a key, and then produces bytes with Next, Read, or XORKeyStream.
The same algorithm and key always produce the same sequence, and a Stream never rewinds, so every call continues where the last one stopped.

  - ArcFourVariant is the classic 256 entry swap permutation. The first 512 bytes of output are discarded before any are handed out, since the start of the RC4 keystream is known to be biased.
  - Salsa20 uses the SHA-256 hash of the key with a fixed nonce. Each session is expected to use a fresh random key instead of a new nonce, see NewRandom.
  - ChaCha20 uses the SHA-512 hash of the key, taking the first 32 bytes as the key and the next 12 as the nonce.

# General guidelines:
  - This is for obfuscating values held in memory, not for encrypting data at rest.
  - Salsa20 or ChaCha20 should be preferred for anything new. ArcFourVariant exists to read values protected by older containers.
  - A Stream must not be shared between goroutines without external synchronization.
*/
package keystream
