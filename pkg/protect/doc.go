/*
Package protect holds sensitive bytes and text so that plain text copies are kept short-lived and explicitly erasable.

# How it works:

A Buffer copies the caller's bytes into a memguard Enclave, which keeps the value encrypted in memory until it's needed.
Every read decrypts into locked memory, copies the value out into a fresh slice, and destroys the locked copy again.
The caller owns the returned slice and should Wipe it once it's no longer needed.

A Text is a Buffer interpreted as UTF-8.
Calling ReadString moves a Text from the protected state to the revealed state, where the plain string is cached and the protected copy is destroyed.
This is a one-way transition for performance, and there's no way to re-protect a revealed Text.

# General guidelines:
  - Call Destroy as soon as the secret isn't needed anymore, typically with defer.
  - Prefer Bytes over ReadString, since Go strings can't be wiped.
  - Both Buffer and Text print as [REDACTED] with fmt, so they're safe to pass to a logger by accident.
  - Reads may happen from several goroutines, but a revealed Text should be owned by one logical operation.
*/
package protect
