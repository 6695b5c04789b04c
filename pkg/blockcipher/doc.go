/*
Package blockcipher wraps 256-bit block ciphers for the two ways the key derivation engine needs them.

# How it works:

Bulk mode encrypts and decrypts byte streams with CBC chaining and PKCS #7 padding.
NewEncryptWriter returns an io.WriteCloser that writes the final padded block on Close, and NewDecryptReader returns an io.Reader that validates and strips the padding when the ciphertext ends.

Permutation mode keys the cipher once and encrypts the two 16 byte halves of a 32 byte buffer in place, with no IV and no padding.
This is the primitive that key stretching repeats many times.

Ciphers are identified by the UUIDs that containers store in their headers, see Lookup.
AES is the default engine, and Go's crypto/aes picks a hardware implementation when one is available.

# General guidelines:
  - Keys must be exactly 32 bytes and IVs exactly 16 bytes.
  - Never reuse an IV with the same key in bulk mode.
  - CBC doesn't authenticate anything. Verify a hash or MAC of the plaintext in the container layer.
*/
package blockcipher
