/*
Package entropy provides a shared, thread-safe pool of gathered entropy that produces non-reproducible random bytes.

# How it works:

A Pool keeps 64 bytes of state. New seeds it from whatever the host offers: the clock, process and user IDs, the host name, runtime memory statistics, the OS random source, and on unix hosts uname and resource usage.
Any of these that can't be read are skipped, which only reduces the entropy gathered.

AddEntropy folds more material into the pool with SHA-512.
GetRandomBytes produces output 32 bytes at a time by hashing the pool, a block counter, and fresh bytes from a weak PRNG with SHA-256.

A Pool implements io.Reader, so it can be passed anywhere randomness is consumed.

# General guidelines:
  - Create one Pool when the process starts and pass it to whatever needs it.
  - A Pool is safe for concurrent use. Concurrent readers interleave at 32 byte block granularity.
  - Feed AddEntropy with anything unpredictable the application sees, like user input timing.
*/
package entropy
