package userkey

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

const (
	// parseWindow is how much of a key file is considered for the structured formats.
	// Anything longer can only be hashed, so the rest is streamed into the hash.
	parseWindow = 1 << 20
	sigSize     = 8
)

var (
	ErrUnreadableKeyFile     = errors.New("unreadable key file")
	ErrLooksLikeDatabaseFile = errors.New("key file looks like a database file")
)

const dbSignature1 uint32 = 0x9AA2D903

var dbSignature2 = []uint32{
	0xB54BFB67, // current
	0xB54BFB66, // pre-release
	0xB54BFB65, // legacy
}

type keyFileConfig struct {
	allowDatabase bool
}

type KeyFileOpt = func(conf *keyFileConfig) error

// AllowDatabaseFile disables the check that rejects a key file starting with a database signature.
func AllowDatabaseFile() KeyFileOpt {
	return func(conf *keyFileConfig) error {
		conf.allowDatabase = true
		return nil
	}
}

// KeyFile is a Source read from a file.
type KeyFile struct {
	path string
	key  *protect.Buffer
}

// NewKeyFile reads a key file from r.
// The path is only used for display, r is the only thing read.
func NewKeyFile(r io.Reader, path string, opts ...KeyFileOpt) (*KeyFile, error) {
	conf := new(keyFileConfig)
	for _, opt := range opts {
		if err := opt(conf); err != nil {
			return nil, err
		}
	}
	if r == nil {
		return nil, fmt.Errorf("%w: no key file stream", ErrUnreadableKeyFile)
	}
	key, err := readKeyFile(r, conf)
	if err != nil {
		return nil, err
	}
	defer protect.Wipe(key)
	return &KeyFile{
		path: path,
		key:  protect.New(key),
	}, nil
}

func (k *KeyFile) Name() string {
	return "keyfile"
}

// Path returns the path given when the KeyFile was read.
func (k *KeyFile) Path() string {
	return k.path
}

func (k *KeyFile) KeyData() *protect.Buffer {
	return k.key
}

func (k *KeyFile) Destroy() {
	k.key.Destroy()
	k.key = nil
}

func readKeyFile(r io.Reader, conf *keyFileConfig) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, parseWindow+1))
	if err != nil {
		protect.Wipe(data)
		return nil, fmt.Errorf("%w: %w", ErrUnreadableKeyFile, err)
	}
	defer protect.Wipe(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: key file is empty", ErrUnreadableKeyFile)
	}
	if !conf.allowDatabase && looksLikeDatabase(data) {
		return nil, ErrLooksLikeDatabaseFile
	}

	if len(data) <= parseWindow {
		if key, ok := parseXMLKey(data); ok {
			return key, nil
		}
		switch len(data) {
		case KeySize:
			return bytes.Clone(data), nil
		case KeySize * 2:
			key := make([]byte, KeySize)
			if _, err := hex.Decode(key, data); err == nil {
				return key, nil
			}
			protect.Wipe(key)
		}
	}

	h := sha256.New()
	h.Write(data)
	if _, err := io.Copy(h, r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableKeyFile, err)
	}
	return h.Sum(nil), nil
}

func looksLikeDatabase(data []byte) bool {
	if len(data) < sigSize {
		return false
	}
	if binary.LittleEndian.Uint32(data[:4]) != dbSignature1 {
		return false
	}
	sig2 := binary.LittleEndian.Uint32(data[4:8])
	for _, s := range dbSignature2 {
		if sig2 == s {
			return true
		}
	}
	return false
}

type xmlKeyFile struct {
	XMLName xml.Name    `xml:"KeyFile"`
	Meta    *xmlKeyMeta `xml:"Meta"`
	Key     *xmlKey     `xml:"Key"`
}

type xmlKeyMeta struct {
	Version string `xml:"Version"`
}

type xmlKey struct {
	Data string `xml:"Data"`
}

// parseXMLKey returns the key in an XML key file.
// Anything that isn't a well-formed key file with a 32 byte payload isn't treated as one.
func parseXMLKey(data []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return nil, false
	}
	var doc xmlKeyFile
	if err := xml.Unmarshal(trimmed, &doc); err != nil {
		return nil, false
	}
	if doc.Meta == nil || doc.Key == nil {
		return nil, false
	}
	encoded := bytes.TrimSpace([]byte(doc.Key.Data))
	key := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(key, encoded)
	if err != nil || n != KeySize {
		protect.Wipe(key)
		return nil, false
	}
	return key[:n], true
}

// GenerateKeyFile writes a new XML key file with KeySize random bytes read from rng.
func GenerateKeyFile(w io.Writer, rng io.Reader) error {
	if w == nil || rng == nil {
		return fmt.Errorf("%w: writer and random source are required", ErrInvalidArgument)
	}
	key := make([]byte, KeySize)
	defer protect.Wipe(key)
	if _, err := io.ReadFull(rng, key); err != nil {
		return fmt.Errorf("failed to read random key: %w", err)
	}
	doc := xmlKeyFile{
		Meta: &xmlKeyMeta{Version: "1.00"},
		Key:  &xmlKey{Data: base64.StdEncoding.EncodeToString(key)},
	}
	out, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return err
	}
	defer protect.Wipe(out)
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
