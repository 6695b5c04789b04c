//go:build unix

package entropy

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/sys/unix"
)

func platformSignals() [][]byte {
	var signals [][]byte
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		signals = append(signals, bytes.Join([][]byte{
			uts.Sysname[:], uts.Nodename[:], uts.Release[:], uts.Version[:], uts.Machine[:],
		}, nil))
	}
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err == nil {
		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.LittleEndian, &usage); err == nil {
			signals = append(signals, buf.Bytes())
		}
	}
	return signals
}
