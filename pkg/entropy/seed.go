package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"os"
	"runtime"
	"time"
)

// collectSignals gathers best-effort seed material from the host.
// Anything that can't be read is skipped.
func collectSignals() [][]byte {
	var signals [][]byte
	num := func(vals ...uint64) {
		buf := make([]byte, 8*len(vals))
		for i, v := range vals {
			binary.LittleEndian.PutUint64(buf[8*i:], v)
		}
		signals = append(signals, buf)
	}
	str := func(s string, err error) {
		if err == nil && len(s) > 0 {
			signals = append(signals, []byte(s))
		}
	}

	now := time.Now()
	num(uint64(now.UnixNano()), uint64(now.Nanosecond()))
	num(mrand.Uint64(), mrand.Uint64(), mrand.Uint64(), mrand.Uint64())
	num(uint64(os.Getpid()), uint64(os.Getppid()), uint64(os.Getuid()), uint64(os.Getgid()))
	num(uint64(runtime.NumCPU()), uint64(runtime.NumGoroutine()))
	str(os.Hostname())
	str(os.Executable())
	str(os.Getwd())
	str(runtime.GOOS+"/"+runtime.GOARCH+"/"+runtime.Version(), nil)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	num(mem.Alloc, mem.TotalAlloc, mem.Sys, mem.Mallocs, mem.Frees, mem.HeapObjects, mem.PauseTotalNs, uint64(mem.NumGC))

	osRand := make([]byte, 32)
	if _, err := rand.Read(osRand); err == nil {
		signals = append(signals, osRand)
	}

	signals = append(signals, platformSignals()...)
	num(uint64(time.Since(now).Nanoseconds()))
	return signals
}
