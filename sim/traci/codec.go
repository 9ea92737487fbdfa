package traci

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// message accumulates one outgoing TraCI message. Commands are appended with
// their length prefix already resolved; Bytes() prepends the 4-byte total
// message length the protocol requires.
type message struct {
	buf []byte
}

// appendCommand frames a single command (identifier + content) with the
// short one-byte length when it fits, or the extended 0x00 + int32 form
// otherwise.
func (m *message) appendCommand(cmd byte, content []byte) {
	// +2: length byte and command identifier
	if n := len(content) + 2; n <= math.MaxUint8 {
		m.buf = append(m.buf, byte(n), cmd)
	} else {
		ext := make([]byte, 6)
		ext[0] = 0
		// +6: marker byte, int32 length and command identifier
		binary.BigEndian.PutUint32(ext[1:5], uint32(len(content)+6))
		ext[5] = cmd
		m.buf = append(m.buf, ext...)
	}
	m.buf = append(m.buf, content...)
}

// Bytes returns the complete wire form including the total-length header.
func (m *message) Bytes() []byte {
	out := make([]byte, 4+len(m.buf))
	binary.BigEndian.PutUint32(out[:4], uint32(len(m.buf)+4))
	copy(out[4:], m.buf)
	return out
}

// packer builds command content.
type packer struct {
	buf []byte
}

func (p *packer) writeUByte(b byte) { p.buf = append(p.buf, b) }

func (p *packer) writeInt(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	p.buf = append(p.buf, tmp[:]...)
}

func (p *packer) writeDouble(v float64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
	p.buf = append(p.buf, tmp[:]...)
}

func (p *packer) writeString(s string) {
	p.writeInt(int32(len(s)))
	p.buf = append(p.buf, s...)
}

// getVarContent is the shared content layout of every "get variable" command:
// variable identifier followed by the object identifier.
func getVarContent(variable byte, objectID string) []byte {
	var p packer
	p.writeUByte(variable)
	p.writeString(objectID)
	return p.buf
}

// storage is a cursor over one received TraCI message body.
type storage struct {
	buf []byte
	pos int
}

func readMessage(r io.Reader) (*storage, error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("reading message length: %w", err)
	}
	total := binary.BigEndian.Uint32(head[:])
	if total < 4 {
		return nil, fmt.Errorf("invalid message length %d", total)
	}
	body := make([]byte, total-4)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("reading message body: %w", err)
	}
	return &storage{buf: body}, nil
}

func (s *storage) remaining() int { return len(s.buf) - s.pos }

func (s *storage) need(n int) error {
	if s.remaining() < n {
		return fmt.Errorf("truncated message: need %d bytes, have %d", n, s.remaining())
	}
	return nil
}

func (s *storage) readUByte() (byte, error) {
	if err := s.need(1); err != nil {
		return 0, err
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

func (s *storage) readInt() (int32, error) {
	if err := s.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(s.buf[s.pos : s.pos+4]))
	s.pos += 4
	return v, nil
}

func (s *storage) readDouble() (float64, error) {
	if err := s.need(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(s.buf[s.pos : s.pos+8]))
	s.pos += 8
	return v, nil
}

func (s *storage) readString() (string, error) {
	n, err := s.readInt()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("negative string length %d", n)
	}
	if err := s.need(int(n)); err != nil {
		return "", err
	}
	v := string(s.buf[s.pos : s.pos+int(n)])
	s.pos += int(n)
	return v, nil
}

func (s *storage) readStringList() ([]string, error) {
	n, err := s.readInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative list length %d", n)
	}
	out := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		v, err := s.readString()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// expectType consumes one type byte and verifies it.
func (s *storage) expectType(want byte) error {
	got, err := s.readUByte()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("unexpected value type 0x%02x, want 0x%02x", got, want)
	}
	return nil
}

// Typed readers: a type byte followed by the value. Compound members on the
// wire carry their own type tags.

func (s *storage) readTypedInt() (int32, error) {
	if err := s.expectType(typeInteger); err != nil {
		return 0, err
	}
	return s.readInt()
}

func (s *storage) readTypedDouble() (float64, error) {
	if err := s.expectType(typeDouble); err != nil {
		return 0, err
	}
	return s.readDouble()
}

func (s *storage) readTypedString() (string, error) {
	if err := s.expectType(typeString); err != nil {
		return "", err
	}
	return s.readString()
}

func (s *storage) readTypedStringList() ([]string, error) {
	if err := s.expectType(typeStringList); err != nil {
		return nil, err
	}
	return s.readStringList()
}

// readCompound consumes a compound type tag and returns its element count.
func (s *storage) readCompound() (int32, error) {
	if err := s.expectType(typeCompound); err != nil {
		return 0, err
	}
	return s.readInt()
}

// readCommandHeader consumes one command's length prefix (short or extended)
// and identifier, returning the identifier and the content length.
func (s *storage) readCommandHeader() (cmd byte, contentLen int, err error) {
	short, err := s.readUByte()
	if err != nil {
		return 0, 0, err
	}
	total := int(short)
	headerLen := 2
	if short == 0 {
		ext, err := s.readInt()
		if err != nil {
			return 0, 0, err
		}
		total = int(ext)
		headerLen = 6
	}
	cmd, err = s.readUByte()
	if err != nil {
		return 0, 0, err
	}
	if total < headerLen {
		return 0, 0, fmt.Errorf("invalid command length %d", total)
	}
	return cmd, total - headerLen, nil
}
