//go:build !unix

package entropy

func platformSignals() [][]byte {
	return nil
}
