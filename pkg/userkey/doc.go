/*
Package userkey provides the secrets a user can present to unlock a container.

Each Source reduces its input to exactly 32 bytes of key data, held in a protect.Buffer:
  - Password hashes the UTF-8 bytes of the password with SHA-256.
  - KeyFile accepts an XML key file, a 32 byte binary file, a 64 character hex file, or hashes any other file.
  - Custom is for key providers that produce their own secret, optionally hashing it.

Sources are combined with the composite package, and must be destroyed by whoever created them.
*/
package userkey
